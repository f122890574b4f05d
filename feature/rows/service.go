package rows

import (
	"context"
	"errors"
	"strings"

	"grid-sync/core/content"
	"grid-sync/core/reconcile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidRequest reports a manual request that cannot be applied.
var ErrInvalidRequest = errors.New("invalid request")

// Service handles manual store-side operations.
type Service struct {
	repo   *Repository
	logger *zap.Logger
}

// NewService creates a rows service.
func NewService(repo *Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Upsert writes {id, ...data} as a store-originated change and returns the
// trace id of the write. An id key inside data is ignored.
func (s *Service) Upsert(ctx context.Context, id string, data content.Content) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.Join(ErrInvalidRequest, errors.New("id is required"))
	}

	c := content.New()
	c.Set("id", content.String(id))
	for _, k := range data.Keys() {
		if k == "id" {
			continue
		}
		v, _ := data.Get(k)
		c.Set(k, v)
	}

	traceID := "manual-" + uuid.NewString()
	if err := s.repo.Upsert(ctx, id, c, reconcile.ProvenanceStore, traceID); err != nil {
		return "", err
	}
	s.logger.Info("Manual row upsert", zap.String("id", id), zap.String("trace_id", traceID))
	return traceID, nil
}

// Delete soft-deletes a row as a store-originated change.
func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.Join(ErrInvalidRequest, errors.New("id is required"))
	}

	traceID := "manual-del-" + uuid.NewString()
	if err := s.repo.SoftDelete(ctx, []string{id}, reconcile.ProvenanceStore, traceID); err != nil {
		return "", err
	}
	s.logger.Info("Manual row delete", zap.String("id", id), zap.String("trace_id", traceID))
	return traceID, nil
}

// Recent returns the most recently written rows.
func (s *Service) Recent(ctx context.Context, limit int) ([]reconcile.RowRecord, error) {
	return s.repo.Recent(ctx, limit)
}
