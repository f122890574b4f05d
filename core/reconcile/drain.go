package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"grid-sync/core/events"
	"grid-sync/core/metrics"

	"go.uber.org/zap"
)

// DefaultBatchSize is the number of change queue entries drained per tick.
const DefaultBatchSize = 20

// StoreToGrid drains the change queue into the grid.
type StoreToGrid struct {
	grid      GridWriter
	queue     ChangeQueue
	sink      events.Sink
	logger    *zap.Logger
	batchSize int
}

// NewStoreToGrid creates a store to grid reconciler. A non-positive batchSize
// selects DefaultBatchSize.
func NewStoreToGrid(grid GridWriter, queue ChangeQueue, sink events.Sink, logger *zap.Logger, batchSize int) *StoreToGrid {
	if sink == nil {
		sink = events.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &StoreToGrid{
		grid:      grid,
		queue:     queue,
		sink:      sink,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Run drains one batch of pending changes, oldest first.
//
// Each entry is applied independently; a failed entry stays pending and is
// retried next tick. Entries that succeeded are marked processed together at the
// end. A SchemaError stops the batch early since every following entry would
// fail the same way.
func (r *StoreToGrid) Run(ctx context.Context) (*StoreToGridResult, error) {
	entries, err := r.queue.FetchPending(ctx, r.batchSize)
	if err != nil {
		return nil, fmt.Errorf("fetch pending changes: %w", err)
	}

	res := &StoreToGridResult{Fetched: len(entries)}
	if len(entries) == 0 {
		return res, nil
	}

	var fatal error
	processed := make([]uint64, 0, len(entries))
	for _, e := range entries {
		if err := r.apply(ctx, e); err != nil {
			res.Failed++
			r.logger.Error("Failed processing change entry",
				zap.Uint64("entry_id", e.ID),
				zap.String("row_id", e.RowID),
				zap.String("trace_id", e.TraceID),
				zap.Error(err),
			)

			var schemaErr *SchemaError
			if errors.As(err, &schemaErr) {
				fatal = err
				break
			}
			continue
		}
		processed = append(processed, e.ID)
	}

	if len(processed) > 0 {
		if err := r.queue.MarkProcessed(ctx, processed); err != nil {
			return res, fmt.Errorf("mark %d changes processed: %w", len(processed), err)
		}
		res.Processed = len(processed)
	}

	if fatal != nil {
		return res, fatal
	}

	r.logger.Info("Store to grid sync done",
		zap.Int("fetched", res.Fetched),
		zap.Int("processed", res.Processed),
		zap.Int("failed", res.Failed),
	)

	return res, nil
}

func (r *StoreToGrid) apply(ctx context.Context, e ChangeEntry) error {
	ref := strconv.FormatUint(e.ID, 10)

	switch e.Type {
	case ChangeDelete:
		if e.RowID == "" {
			return &RecordError{ID: ref, Op: "tombstone", Err: errors.New("missing row id")}
		}
		if err := r.grid.TombstoneByID(ctx, e.RowID); err != nil {
			return &RecordError{ID: e.RowID, Op: "tombstone", Err: err}
		}
		metrics.Rows.WithLabelValues(string(DirectionStoreToGrid), "delete").Inc()
		r.sink.Emit(events.Event{Type: events.TypeStoreToGridDel, Message: "DB→Sheet delete id=" + e.RowID})

	case ChangeInsert, ChangeUpdate:
		c, ok := entryContent(e)
		if !ok {
			return &RecordError{ID: ref, Op: "upsert", Err: errors.New("entry has no row content")}
		}
		if err := r.grid.UpsertByID(ctx, c); err != nil {
			return &RecordError{ID: e.RowID, Op: "upsert", Err: err}
		}
		metrics.Rows.WithLabelValues(string(DirectionStoreToGrid), "upsert").Inc()
		r.sink.Emit(events.Event{Type: events.TypeStoreToGridUps, Message: "DB→Sheet upsert id=" + c.Text("id")})

	default:
		return &RecordError{ID: ref, Op: "apply", Err: fmt.Errorf("unknown change type %q", e.Type)}
	}

	return nil
}
