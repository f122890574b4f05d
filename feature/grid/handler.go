package grid

import (
	"errors"
	"strings"

	"grid-sync/core/content"
	"grid-sync/core/logger"
	"grid-sync/core/reconcile"
	"grid-sync/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	previewRows          = 5
	defaultSnapshotLimit = 20
)

// Handler handles HTTP requests against the grid.
type Handler struct {
	adapter  *Adapter
	archiver *Archiver
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler. archiver may be nil when snapshot
// archiving is disabled.
func NewHandler(adapter *Adapter, archiver *Archiver, logger *zap.Logger) *Handler {
	return &Handler{adapter: adapter, archiver: archiver, logger: logger}
}

// RegisterRoutes registers the grid routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sheet")
	group.Post("/append", h.HandleAppend)
	group.Get("/preview", h.HandlePreview)
	group.Get("/snapshots", h.HandleSnapshots)
}

type appendRequest struct {
	ID   string          `json:"id"`
	Data content.Content `json:"data"`
}

// HandleAppend writes {id, ...data} to the grid. An existing row with the same
// id is overwritten in place.
// @Summary Upsert Grid Row
// @Description Writes {id, ...data} to the grid, overwriting the first row with the same id or appending a new one.
// @Tags grid
// @Accept json
// @Produce json
// @Param body body map[string]interface{} true "Row id and data"
// @Success 200 {object} map[string]interface{} "Append Result"
// @Failure 400 {object} map[string]interface{} "Bad Request"
// @Failure 502 {object} map[string]interface{} "Grid Unavailable"
// @Security ApiKeyAuth
// @Router /sheet/append [post]
func (h *Handler) HandleAppend(c *fiber.Ctx) error {
	var req appendRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, err)
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "id is required"})
	}

	row := content.New()
	row.Set("id", content.String(id))
	for _, k := range req.Data.Keys() {
		if k == "id" {
			continue
		}
		v, _ := req.Data.Get(k)
		row.Set(k, v)
	}

	if err := h.adapter.UpsertByID(c.UserContext(), row); err != nil {
		logger.WithRayID(h.logger, c).Error("Sheet append failed", zap.String("id", id), zap.Error(err))
		var schemaErr *reconcile.SchemaError
		if errors.As(err, &schemaErr) {
			return respondError(c, fiber.StatusBadRequest, err)
		}
		return respondError(c, fiber.StatusBadGateway, err)
	}

	return c.JSON(fiber.Map{"ok": true, "id": id})
}

// HandlePreview returns the first raw rows of the grid, header included.
// @Summary Preview Grid
// @Description Returns the first raw rows of the grid, header row included.
// @Tags grid
// @Produce json
// @Success 200 {object} map[string]interface{} "Preview"
// @Failure 502 {object} map[string]interface{} "Grid Unavailable"
// @Security ApiKeyAuth
// @Router /sheet/preview [get]
func (h *Handler) HandlePreview(c *fiber.Ctx) error {
	sample, err := h.adapter.Preview(c.UserContext(), previewRows)
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Sheet preview failed", zap.Error(err))
		return respondError(c, fiber.StatusBadGateway, err)
	}
	if sample == nil {
		sample = [][]string{}
	}

	return c.JSON(fiber.Map{"ok": true, "sheet_name": h.adapter.SheetName(), "sample": sample})
}

// HandleSnapshots lists archived grid snapshots, newest first.
// @Summary List Grid Snapshots
// @Description Lists archived grid snapshots, newest first. enabled is false when archiving is off.
// @Tags grid
// @Produce json
// @Param limit query int false "Maximum snapshots"
// @Success 200 {object} map[string]interface{} "Snapshots"
// @Failure 502 {object} map[string]interface{} "Storage Unavailable"
// @Security ApiKeyAuth
// @Router /sheet/snapshots [get]
func (h *Handler) HandleSnapshots(c *fiber.Ctx) error {
	if h.archiver == nil {
		return c.JSON(fiber.Map{"ok": true, "enabled": false, "snapshots": []SnapshotObject{}})
	}

	limit := defaultSnapshotLimit
	if q := c.Query("limit"); q != "" {
		if n := utils.ToInt(q); n > 0 {
			limit = n
		}
	}

	objects, err := h.archiver.List(c.UserContext(), limit)
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Snapshot listing failed", zap.Error(err))
		return respondError(c, fiber.StatusBadGateway, err)
	}
	if objects == nil {
		objects = []SnapshotObject{}
	}

	return c.JSON(fiber.Map{"ok": true, "enabled": true, "snapshots": objects})
}

func respondError(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"ok":    false,
		"error": err.Error(),
	})
}
