package outbox

import (
	"context"
	"fmt"
	"time"

	"grid-sync/core/content"
	"grid-sync/core/reconcile"
	"grid-sync/feature/outbox/models"

	"gorm.io/gorm"
)

// Queue implements reconcile.ChangeQueue over gorm.
type Queue struct {
	db  *gorm.DB
	now func() time.Time
}

var _ reconcile.ChangeQueue = (*Queue)(nil)

// NewQueue creates a change queue.
func NewQueue(db *gorm.DB) *Queue {
	return &Queue{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates or updates the 'sync_outbox' table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.OutboxEntry{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", models.TableName, err)
	}
	return nil
}

// FetchPending implements reconcile.ChangeQueue.
func (q *Queue) FetchPending(ctx context.Context, limit int) ([]reconcile.ChangeEntry, error) {
	var rows []models.OutboxEntry
	err := q.db.WithContext(ctx).
		Where("processed_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending changes: %w", err)
	}

	out := make([]reconcile.ChangeEntry, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntry(m))
	}
	return out, nil
}

// MarkProcessed implements reconcile.ChangeQueue. Entries already processed keep
// their original timestamp.
func (q *Queue) MarkProcessed(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}

	err := q.db.WithContext(ctx).
		Model(&models.OutboxEntry{}).
		Where("id IN ? AND processed_at IS NULL", ids).
		Update("processed_at", q.now()).Error
	if err != nil {
		return fmt.Errorf("failed to mark %d changes processed: %w", len(ids), err)
	}
	return nil
}

// PendingCount returns the number of entries not yet processed.
func (q *Queue) PendingCount(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.WithContext(ctx).
		Model(&models.OutboxEntry{}).
		Where("processed_at IS NULL").
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending changes: %w", err)
	}
	return n, nil
}

// toEntry converts a table row. A payload that does not decode leaves Content
// nil; the drain reports such upserts as malformed and keeps them pending.
func toEntry(m models.OutboxEntry) reconcile.ChangeEntry {
	e := reconcile.ChangeEntry{
		ID:     m.ID,
		Type:   reconcile.ChangeType(m.EventType),
		RowID:  m.RowID,
		Source: reconcile.Provenance(m.Source),
	}
	if m.TraceID != nil {
		e.TraceID = *m.TraceID
	}
	if m.RowJSON != nil && *m.RowJSON != "" {
		if c, err := content.Parse([]byte(*m.RowJSON)); err == nil {
			e.Content = &c
		}
	}
	return e
}
