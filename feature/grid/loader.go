package grid

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
}

// NewFeature creates a new grid feature. archiver may be nil.
func NewFeature(adapter *Adapter, archiver *Archiver, logger *zap.Logger) *Feature {
	return &Feature{handler: NewHandler(adapter, archiver, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "grid"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
