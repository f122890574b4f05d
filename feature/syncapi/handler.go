package syncapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"grid-sync/core/events"
	"grid-sync/core/logger"
	"grid-sync/core/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "grid-sync"

const (
	defaultKeepAlive = 15 * time.Second
	subscriberBuffer = 64
)

// Handler handles HTTP requests for the sync engine.
type Handler struct {
	service   *Service
	logger    *zap.Logger
	done      <-chan struct{}
	keepAlive time.Duration
}

// NewHandler creates a new HTTP handler. Event streams end when ctx is done so
// the server can shut down.
func NewHandler(ctx context.Context, service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		done:      ctx.Done(),
		keepAlive: defaultKeepAlive,
	}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.HandleHealth)
	app.Get("/events", h.HandleEvents)

	group := app.Group("/sync")
	group.Post("/grid-to-store", h.HandleGridToStore)
	group.Post("/store-to-grid", h.HandleStoreToGrid)
}

// HandleHealth reports liveness.
// @Summary Health
// @Description Reports liveness. Does not require an API key.
// @Tags sync
// @Produce json
// @Success 200 {object} map[string]interface{} "Health"
// @Router /health [get]
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": ServiceName,
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// HandleGridToStore runs one grid to store tick.
// @Summary Run Grid To Store
// @Description Runs one grid to store tick now. Returns 409 while a tick of that direction is running.
// @Tags sync
// @Produce json
// @Success 200 {object} map[string]interface{} "Tick Result"
// @Failure 409 {object} map[string]interface{} "Tick Already Running"
// @Failure 500 {object} map[string]interface{} "Internal Server Error"
// @Security ApiKeyAuth
// @Router /sync/grid-to-store [post]
func (h *Handler) HandleGridToStore(c *fiber.Ctx) error {
	res, err := h.service.GridToStore(c.UserContext())
	if err != nil {
		return h.tickFailed(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "result": res})
}

// HandleStoreToGrid runs one store to grid tick.
// @Summary Run Store To Grid
// @Description Runs one store to grid tick now. Returns 409 while a tick of that direction is running.
// @Tags sync
// @Produce json
// @Success 200 {object} map[string]interface{} "Tick Result"
// @Failure 409 {object} map[string]interface{} "Tick Already Running"
// @Failure 500 {object} map[string]interface{} "Internal Server Error"
// @Security ApiKeyAuth
// @Router /sync/store-to-grid [post]
func (h *Handler) HandleStoreToGrid(c *fiber.Ctx) error {
	res, err := h.service.StoreToGrid(c.UserContext())
	if err != nil {
		return h.tickFailed(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "result": res})
}

func (h *Handler) tickFailed(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, scheduler.ErrBusy) {
		status = fiber.StatusConflict
	} else {
		logger.WithRayID(h.logger, c).Error("Manual tick failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"ok":    false,
		"error": err.Error(),
	})
}

// HandleEvents streams hub events as Server-Sent Events, one JSON object per
// message. The stream opens with a system greeting and carries keep-alive
// comments while idle.
// @Summary Event Stream
// @Description Streams engine events as Server-Sent Events. EventSource clients pass the API key as api_key.
// @Tags sync
// @Produce text/event-stream
// @Param api_key query string false "API key"
// @Success 200 {string} string "event stream"
// @Security ApiKeyAuth
// @Router /events [get]
func (h *Handler) HandleEvents(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ch, cancel := h.service.Subscribe(subscriberBuffer)
	log := logger.WithRayID(h.logger, c)
	log.Debug("Event stream opened")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		hello := events.Event{Type: events.TypeSystem, Message: "Connected to sync engine", Timestamp: time.Now().UTC()}
		if err := writeEvent(w, hello); err != nil {
			return
		}

		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		for {
			select {
			case <-h.done:
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := writeEvent(w, ev); err != nil {
					log.Debug("Event stream closed", zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					log.Debug("Event stream closed", zap.Error(err))
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, ev events.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
