package outbox

import (
	"grid-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the change queue.
type Handler struct {
	queue  *Queue
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(queue *Queue, logger *zap.Logger) *Handler {
	return &Handler{queue: queue, logger: logger}
}

// RegisterRoutes registers the outbox routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/outbox/stats", h.HandleStats)
}

// HandleStats returns the number of pending changes.
// @Summary Change Queue Stats
// @Description Returns the number of change queue entries not yet applied to the grid.
// @Tags outbox
// @Produce json
// @Success 200 {object} map[string]interface{} "Pending Count"
// @Failure 500 {object} map[string]interface{} "Internal Server Error"
// @Security ApiKeyAuth
// @Router /outbox/stats [get]
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	pending, err := h.queue.PendingCount(c.UserContext())
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Outbox stats failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":    false,
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"ok": true, "pending": pending})
}
