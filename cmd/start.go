package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grid-sync/core/events"
	"grid-sync/core/metrics"
	"grid-sync/core/scheduler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync engine and the HTTP server",
	Long: `Connects to the database and the spreadsheet, starts both sync pollers
and serves the HTTP API until SIGINT or SIGTERM.`,
	RunE: runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	// 1. Load Configuration and Logger
	cfg, logg, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect collaborators
	e, err := newEngine(ctx, cfg, logg)
	if err != nil {
		return err
	}

	// 3. HTTP server
	app, err := newServer(ctx, cfg, e, logg)
	if err != nil {
		return fmt.Errorf("failed to load features: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("addr", cfg.Server.Addr()))
		serverErr <- app.Listen(cfg.Server.Addr())
	}()

	// 4. Pollers
	schedDone := make(chan error, 1)
	go func() {
		schedDone <- scheduler.Run(ctx, e.gridToStore, e.storeToGrid)
	}()

	e.hub.Emit(events.Event{Type: events.TypeSystem, Message: "Sync Engine started"})
	logg.Info("Sync engine started",
		zap.Duration("grid_interval", cfg.Sync.GridInterval),
		zap.Duration("store_interval", cfg.Sync.StoreInterval),
	)

	// 5. Graceful Shutdown
	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		runErr = fmt.Errorf("server failed: %w", err)
		stop()
	}

	logg.Info("Shutting down...")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logg.Warn("Server shutdown incomplete", zap.Error(err))
	}
	if err := <-schedDone; err != nil && runErr == nil {
		runErr = err
	}
	logg.Info("Sync engine stopped")
	return runErr
}
