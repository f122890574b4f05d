package integrity

import (
	"errors"

	"grid-sync/core/logger"
	"grid-sync/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/triggers", h.HandleTriggerCheck)
	group.Get("/grid", h.HandleGridCheck)
	group.Get("/storage", h.HandleStorageCheck)
}

// HandleIntegrityCheck runs every check and returns a combined report.
// @Summary Run All Integrity Checks
// @Description Runs the schema, trigger, grid and storage checks and returns a combined report.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Security ApiKeyAuth
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.UserContext()
	report := make(map[string]interface{})

	if schema, err := h.service.CheckSchema(); err != nil {
		report["schema"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = schema
	}

	if triggers, err := h.service.CheckTriggers(); err != nil {
		report["triggers"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["triggers"] = triggers
	}

	if grid, err := h.service.CheckGrid(ctx); err != nil {
		report["grid"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["grid"] = grid
	}

	if store, err := h.service.CheckStorage(ctx); errors.Is(err, ErrStorageDisabled) {
		report["storage"] = map[string]interface{}{"status": "disabled"}
	} else if err != nil {
		report["storage"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["storage"] = store
	}

	return c.JSON(report)
}

// HandleSchemaCheck checks both tables against their models.
// @Summary Check Schema
// @Description Compares synced_rows and sync_outbox with their models.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Schema Report"
// @Failure 500 {object} map[string]interface{} "Internal Server Error"
// @Security ApiKeyAuth
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckSchema()
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleTriggerCheck checks the change queue triggers.
// @Summary Check Triggers
// @Description Verifies that the change queue triggers exist on synced_rows.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Trigger Report"
// @Failure 500 {object} map[string]interface{} "Internal Server Error"
// @Security ApiKeyAuth
// @Router /integrity/triggers [get]
func (h *Handler) HandleTriggerCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckTriggers()
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Trigger check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleGridCheck checks the grid structure.
// @Summary Check Grid
// @Description Checks the grid header row and the row ids.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Grid Report"
// @Failure 502 {object} map[string]interface{} "Grid Unavailable"
// @Security ApiKeyAuth
// @Router /integrity/grid [get]
func (h *Handler) HandleGridCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckGrid(c.UserContext())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Grid check failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleStorageCheck checks and optionally creates the snapshot bucket.
// @Summary Check Snapshot Storage
// @Description Checks that the snapshot bucket exists. Optionally creates it.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Create the bucket when missing"
// @Success 200 {object} map[string]interface{} "Storage Report"
// @Failure 500 {object} map[string]interface{} "Internal Server Error"
// @Security ApiKeyAuth
// @Router /integrity/storage [get]
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := utils.ToBool(c.Query("fix"))

	report, err := h.service.CheckStorage(c.UserContext())
	if errors.Is(err, ErrStorageDisabled) {
		return c.JSON(fiber.Map{"status": "disabled"})
	}
	if err != nil {
		l.Error("Storage check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Exists {
		l.Warn("Snapshot bucket missing", zap.String("bucket", report.Bucket))

		if fix {
			if err := h.service.FixStorage(c.UserContext()); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to create bucket",
					"details": err.Error(),
				})
			}
			return c.JSON(fiber.Map{"status": "fixed", "bucket": report.Bucket})
		}
	}

	return c.JSON(fiber.Map{"status": "checked", "report": report})
}
