package reconcile

import (
	"context"
	"fmt"
	"strings"

	"grid-sync/core/events"
	"grid-sync/core/logger"
	"grid-sync/core/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GridToStore mirrors the grid into the row store.
type GridToStore struct {
	grid     GridReader
	rows     RowStore
	sink     events.Sink
	archiver SnapshotArchiver
	logger   *zap.Logger

	newTraceID func() string
}

// NewGridToStore creates a grid to store reconciler.
func NewGridToStore(grid GridReader, rows RowStore, sink events.Sink, logger *zap.Logger) *GridToStore {
	if sink == nil {
		sink = events.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GridToStore{
		grid:   grid,
		rows:   rows,
		sink:   sink,
		logger: logger,
		newTraceID: func() string {
			return "grid-" + uuid.NewString()
		},
	}
}

// WithArchiver attaches an archiver that receives the grid snapshot of every
// tick that changed the store.
func (r *GridToStore) WithArchiver(a SnapshotArchiver) *GridToStore {
	r.archiver = a
	return r
}

// Run performs one full grid to store pass.
//
// Every grid row is compared against the stored hash and written only when it
// is new, changed or previously deleted. Active records whose id is absent from
// the grid are then soft-deleted. All writes of the pass share one trace id and
// are tagged ProvenanceGrid.
func (r *GridToStore) Run(ctx context.Context) (*GridToStoreResult, error) {
	snap, err := r.grid.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}

	r.sink.Emit(events.Event{
		Type:    events.TypeGridPoll,
		Message: fmt.Sprintf("Polled sheet: rows=%d, headers=%d", len(snap.Rows), len(snap.Headers)),
	})

	res := &GridToStoreResult{
		TraceID: r.newTraceID(),
		Rows:    len(snap.Rows),
	}
	log := logger.WithTraceID(r.logger, res.TraceID)

	// Every id present in the grid counts as seen, even when its write fails,
	// so a transient failure never tombstones a live row.
	seen := make(map[string]struct{}, len(snap.Rows))
	for _, row := range snap.Rows {
		id := row.ID()
		if _, dup := seen[id]; dup {
			res.Duplicates++
			log.Warn("Duplicate id in grid, keeping first occurrence",
				zap.String("id", id), zap.Int("row", row.Number))
			continue
		}
		seen[id] = struct{}{}

		action, err := r.applyRow(ctx, id, row, res.TraceID)
		if err != nil {
			res.Failed++
			log.Error("Failed grid to store upsert", zap.String("id", id), zap.Error(err))
			continue
		}

		switch action {
		case ActionInsert:
			res.Inserted++
			r.sink.Emit(events.Event{Type: events.TypeGridToStoreIns, Message: "Inserted row id=" + id})
		case ActionUpdate:
			res.Updated++
			r.sink.Emit(events.Event{Type: events.TypeGridToStoreUpd, Message: "Updated row id=" + id})
		}
		metrics.Rows.WithLabelValues(string(DirectionGridToStore), string(action)).Inc()
	}

	// Detect deletions
	active, err := r.rows.ListActiveIDs(ctx)
	if err != nil {
		return res, fmt.Errorf("list active ids: %w", err)
	}

	if missing := planTombstones(active, seen); len(missing) > 0 {
		if err := r.rows.SoftDelete(ctx, missing, ProvenanceGrid, res.TraceID); err != nil {
			return res, fmt.Errorf("soft delete %d rows: %w", len(missing), err)
		}
		res.Deleted = len(missing)
		metrics.Rows.WithLabelValues(string(DirectionGridToStore), "delete").Add(float64(len(missing)))
		r.sink.Emit(events.Event{
			Type:    events.TypeGridToStoreDel,
			Message: "Deleted rows (soft): " + strings.Join(missing, ", "),
		})
	}

	if r.archiver != nil && res.Changed() {
		// Archiving is best effort.
		if err := r.archiver.Archive(ctx, snap); err != nil {
			log.Warn("Failed to archive grid snapshot", zap.Error(err))
		}
	}

	log.Info("Grid to store sync done",
		zap.Int("rows", res.Rows),
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int("deleted", res.Deleted),
		zap.Int("failed", res.Failed),
	)

	return res, nil
}

func (r *GridToStore) applyRow(ctx context.Context, id string, row GridRow, traceID string) (ActionType, error) {
	existing, err := r.rows.Get(ctx, id)
	if err != nil {
		return "", &RecordError{ID: id, Op: "lookup", Err: err}
	}

	action := planRow(existing, row.Content.Fingerprint())
	if action == ActionSkip {
		return action, nil
	}

	if err := r.rows.Upsert(ctx, id, row.Content, ProvenanceGrid, traceID); err != nil {
		return "", &RecordError{ID: id, Op: string(action), Err: err}
	}
	return action, nil
}
