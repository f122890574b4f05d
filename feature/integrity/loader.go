package integrity

import (
	"grid-sync/core/storage"
	"grid-sync/feature/grid"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new integrity feature. client may be nil.
func NewFeature(db *gorm.DB, adapter *grid.Adapter, client storage.Client, bucket, prefix string, logger *zap.Logger) *Feature {
	svc := NewService(db, adapter, client, bucket, prefix, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "integrity"
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
