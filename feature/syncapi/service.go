package syncapi

import (
	"context"

	"grid-sync/core/events"
	"grid-sync/core/reconcile"
	"grid-sync/core/scheduler"
)

// Service gives the HTTP layer access to the pollers and the event hub.
type Service struct {
	gridToStore *scheduler.Poller[*reconcile.GridToStoreResult]
	storeToGrid *scheduler.Poller[*reconcile.StoreToGridResult]
	hub         *events.Hub
}

// NewService creates a sync service.
func NewService(
	gridToStore *scheduler.Poller[*reconcile.GridToStoreResult],
	storeToGrid *scheduler.Poller[*reconcile.StoreToGridResult],
	hub *events.Hub,
) *Service {
	return &Service{gridToStore: gridToStore, storeToGrid: storeToGrid, hub: hub}
}

// GridToStore runs one grid to store tick unless one is running.
func (s *Service) GridToStore(ctx context.Context) (*reconcile.GridToStoreResult, error) {
	return s.gridToStore.TryRun(ctx)
}

// StoreToGrid runs one store to grid tick unless one is running.
func (s *Service) StoreToGrid(ctx context.Context) (*reconcile.StoreToGridResult, error) {
	return s.storeToGrid.TryRun(ctx)
}

// Subscribe attaches an event subscriber.
func (s *Service) Subscribe(buffer int) (<-chan events.Event, func()) {
	return s.hub.Subscribe(buffer)
}
