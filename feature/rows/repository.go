package rows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grid-sync/core/content"
	"grid-sync/core/reconcile"
	"grid-sync/feature/rows/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository implements reconcile.RowStore over gorm.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ reconcile.RowStore = (*Repository)(nil)

// NewRepository creates a row repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates or updates the 'synced_rows' table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.SyncedRow{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", models.TableName, err)
	}
	return nil
}

// Get implements reconcile.RowStore.
func (r *Repository) Get(ctx context.Context, id string) (*reconcile.RowRecord, error) {
	var m models.SyncedRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get row %s: %w", id, err)
	}
	return toRecord(m)
}

// Upsert implements reconcile.RowStore. The hash is always recomputed from c.
func (r *Repository) Upsert(ctx context.Context, id string, c content.Content, source reconcile.Provenance, traceID string) error {
	if id == "" {
		return errors.New("row id is required")
	}
	if !source.Valid() {
		return fmt.Errorf("invalid provenance %q", source)
	}

	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode row %s: %w", id, err)
	}

	m := models.SyncedRow{
		ID:        id,
		RowJSON:   string(data),
		RowHash:   c.Fingerprint(),
		DeletedAt: nil,
		Source:    string(source),
		TraceID:   nullable(traceID),
		UpdatedAt: r.now(),
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"row_json", "row_hash", "deleted_at", "source", "trace_id", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to upsert row %s: %w", id, err)
	}
	return nil
}

// SoftDelete implements reconcile.RowStore. Already deleted rows are left untouched.
func (r *Repository) SoftDelete(ctx context.Context, ids []string, source reconcile.Provenance, traceID string) error {
	if len(ids) == 0 {
		return nil
	}
	if !source.Valid() {
		return fmt.Errorf("invalid provenance %q", source)
	}

	now := r.now()
	err := r.db.WithContext(ctx).
		Model(&models.SyncedRow{}).
		Where("id IN ? AND deleted_at IS NULL", ids).
		Updates(map[string]interface{}{
			"deleted_at": now,
			"source":     string(source),
			"trace_id":   nullable(traceID),
			"updated_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to soft delete %d rows: %w", len(ids), err)
	}
	return nil
}

// ListActiveIDs implements reconcile.RowStore.
func (r *Repository) ListActiveIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.SyncedRow{}).
		Where("deleted_at IS NULL").
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active ids: %w", err)
	}
	return ids, nil
}

// Recent returns up to limit rows ordered by last write, newest first.
// Deleted rows are included.
func (r *Repository) Recent(ctx context.Context, limit int) ([]reconcile.RowRecord, error) {
	var rows []models.SyncedRow
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent rows: %w", err)
	}

	out := make([]reconcile.RowRecord, 0, len(rows))
	for _, m := range rows {
		rec, err := toRecord(m)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

func toRecord(m models.SyncedRow) (*reconcile.RowRecord, error) {
	c, err := content.Parse([]byte(m.RowJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to decode row %s: %w", m.ID, err)
	}

	rec := &reconcile.RowRecord{
		ID:        m.ID,
		Content:   c,
		Hash:      m.RowHash,
		DeletedAt: m.DeletedAt,
		Source:    reconcile.Provenance(m.Source),
		UpdatedAt: m.UpdatedAt,
	}
	if m.TraceID != nil {
		rec.TraceID = *m.TraceID
	}
	return rec, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
