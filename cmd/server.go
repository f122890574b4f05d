package cmd

import (
	"context"

	"grid-sync/core/config"
	"grid-sync/core/loader"
	"grid-sync/core/logger"
	"grid-sync/core/metrics"
	"grid-sync/core/middleware/auth"
	"grid-sync/core/middleware/rayid"
	_ "grid-sync/docs/swagger"
	"grid-sync/feature/grid"
	"grid-sync/feature/integrity"
	"grid-sync/feature/outbox"
	"grid-sync/feature/rows"
	"grid-sync/feature/syncapi"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// @title Grid Sync API
// @version 1.0
// @description Bidirectional sync between a Google Sheets worksheet and a MySQL table.
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// newServer builds the HTTP app: global middleware first, then every feature
// under /api. ctx ends open event streams.
func newServer(ctx context.Context, cfg *config.Config, e *engine, logg *zap.Logger) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true, // We log our own startup message
	})

	// 1. RayID (Must be first to trace everything)
	app.Use(rayid.New())

	// 2. Request logging with the ray id attached
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Debug("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	// 3. CORS for the dashboard. Credentials cannot be combined with a wildcard.
	origin := cfg.Server.DashboardOrigin
	if origin == "" {
		origin = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origin,
		AllowHeaders:     "Origin, Content-Type, Accept, " + auth.HeaderName + ", " + rayid.HeaderName,
		AllowCredentials: origin != "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Sync Engine Running")
	})

	// Swagger Documentation (Public)
	app.Get("/swagger/*", swagger.HandlerDefault)

	// 4. Auth (health and the banner stay public)
	app.Use(auth.New(auth.Config{
		ApiKey: cfg.Server.ApiKey,
		Public: []string{"/", "/api/health"},
	}))

	app.Get("/metrics", metrics.Handler())

	mgr := loader.NewManager(logg)
	mgr.Register(syncapi.NewFeature(ctx, syncapi.NewService(e.gridToStore, e.storeToGrid, e.hub), logg))
	mgr.Register(rows.NewFeature(e.rows, logg))
	mgr.Register(outbox.NewFeature(e.queue, logg))
	mgr.Register(grid.NewFeature(e.grid, e.archiver, logg))
	mgr.Register(integrity.NewFeature(e.db, e.grid, e.store, cfg.Storage.Bucket, cfg.Storage.Prefix, logg))

	if err := mgr.LoadAll(app.Group("/api")); err != nil {
		return nil, err
	}
	return app, nil
}
