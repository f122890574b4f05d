package rows

import (
	"errors"

	"grid-sync/core/content"
	"grid-sync/core/logger"
	"grid-sync/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// Handler handles HTTP requests for synced rows.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the rows routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/db")
	group.Post("/upsert", h.HandleUpsert)
	group.Post("/delete", h.HandleDelete)
	group.Get("/rows", h.HandleList)
}

type upsertRequest struct {
	ID   string          `json:"id"`
	Data content.Content `json:"data"`
}

type deleteRequest struct {
	ID string `json:"id"`
}

// HandleUpsert writes a row as if it was changed in the database.
// The change travels to the grid through the change queue.
// @Summary Upsert Row
// @Description Writes {id, ...data} to synced_rows with source=store. The change queue triggers carry it to the grid.
// @Tags rows
// @Accept json
// @Produce json
// @Param body body map[string]interface{} true "Row id and data"
// @Success 200 {object} map[string]interface{} "Upsert Result"
// @Failure 400 {object} map[string]interface{} "Bad Request"
// @Failure 500 {object} map[string]interface{} "Internal Server Error"
// @Security ApiKeyAuth
// @Router /db/upsert [post]
func (h *Handler) HandleUpsert(c *fiber.Ctx) error {
	var req upsertRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	traceID, err := h.service.Upsert(c.UserContext(), req.ID, req.Data)
	if err != nil {
		return h.fail(c, "Manual upsert failed", err)
	}

	return c.JSON(fiber.Map{"ok": true, "id": req.ID, "trace_id": traceID})
}

// HandleDelete soft-deletes a row as if it was deleted in the database.
// @Summary Soft Delete Row
// @Description Marks a row as deleted with source=store. The grid row is cleared by the next store to grid tick.
// @Tags rows
// @Accept json
// @Produce json
// @Param body body map[string]interface{} true "Row id"
// @Success 200 {object} map[string]interface{} "Delete Result"
// @Failure 400 {object} map[string]interface{} "Bad Request"
// @Failure 500 {object} map[string]interface{} "Internal Server Error"
// @Security ApiKeyAuth
// @Router /db/delete [post]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	var req deleteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	traceID, err := h.service.Delete(c.UserContext(), req.ID)
	if err != nil {
		return h.fail(c, "Manual delete failed", err)
	}

	return c.JSON(fiber.Map{"ok": true, "id": req.ID, "trace_id": traceID})
}

// HandleList returns the most recently updated rows, deleted ones included.
// @Summary List Recent Rows
// @Description Returns the most recently updated rows, deleted ones included.
// @Tags rows
// @Produce json
// @Param limit query int false "Maximum rows (default 50)"
// @Success 200 {object} map[string]interface{} "Rows"
// @Failure 500 {object} map[string]interface{} "Internal Server Error"
// @Security ApiKeyAuth
// @Router /db/rows [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	limit := defaultRecentLimit
	if q := c.Query("limit"); q != "" {
		limit = utils.ToInt(q)
	}
	if limit <= 0 || limit > maxRecentLimit {
		limit = defaultRecentLimit
	}

	rows, err := h.service.Recent(c.UserContext(), limit)
	if err != nil {
		return h.fail(c, "Listing rows failed", err)
	}

	return c.JSON(fiber.Map{"ok": true, "rows": rows})
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	if errors.Is(err, ErrInvalidRequest) {
		return badRequest(c, err)
	}
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"ok":    false,
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"ok":    false,
		"error": err.Error(),
	})
}
