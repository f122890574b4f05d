package integrity

import (
	"context"
	"errors"

	"grid-sync/core/storage"
	"grid-sync/feature/grid"
	"grid-sync/feature/integrity/checks"
	"grid-sync/feature/outbox"
	outboxmodels "grid-sync/feature/outbox/models"
	rowsmodels "grid-sync/feature/rows/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrStorageDisabled is returned by storage checks when archiving is off.
var ErrStorageDisabled = errors.New("snapshot storage is disabled")

// Service handles integrity checks.
type Service struct {
	db     *gorm.DB
	grid   *grid.Adapter
	client storage.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewService creates a new integrity service. client may be nil when snapshot
// archiving is disabled.
func NewService(db *gorm.DB, adapter *grid.Adapter, client storage.Client, bucket, prefix string, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		grid:   adapter,
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// CheckSchema compares both tables with their models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, rowsmodels.SyncedRow{}, outboxmodels.OutboxEntry{})
}

// CheckTriggers verifies the change queue triggers.
func (s *Service) CheckTriggers() (*checks.TriggerReport, error) {
	if s.db == nil {
		return checks.CheckTriggers(nil, rowsmodels.TableName, nil)
	}
	return checks.CheckTriggers(s.db, rowsmodels.TableName, outbox.TriggerNames(s.db.Dialector.Name()))
}

// CheckGrid inspects the live grid.
func (s *Service) CheckGrid(ctx context.Context) (*checks.GridReport, error) {
	values, err := s.grid.Preview(ctx, 0)
	if err != nil {
		return nil, err
	}
	var headers []string
	if len(values) > 0 {
		headers = grid.NormalizeHeaders(values[0])
	}
	return checks.CheckGrid(headers, values), nil
}

// CheckStorage verifies the snapshot bucket.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}
	return checks.CheckStorage(ctx, s.client, s.bucket, s.prefix)
}

// FixStorage creates the snapshot bucket.
func (s *Service) FixStorage(ctx context.Context) error {
	if s.client == nil {
		return ErrStorageDisabled
	}
	return checks.FixStorage(ctx, s.client, s.bucket, s.logger)
}
