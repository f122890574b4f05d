package reconcile

import (
	"context"

	"grid-sync/core/content"
)

// GridReader reads the full grid.
type GridReader interface {
	// ReadAll fetches the used range and returns normalized headers and every
	// data row that carries an id. It fails with *SchemaError when the grid has
	// no header row or no id column.
	ReadAll(ctx context.Context) (*Snapshot, error)
}

// GridWriter applies single-row changes to the grid.
type GridWriter interface {
	// UpsertByID overwrites the first row whose id matches the content's id, or
	// appends a new row when none matches.
	UpsertByID(ctx context.Context, c content.Content) error

	// TombstoneByID clears the cells of the first row whose id matches.
	// A missing row is not an error.
	TombstoneByID(ctx context.Context, rowID string) error
}

// Grid is the full grid adapter.
type Grid interface {
	GridReader
	GridWriter
}

// RowStore is the relational side of the sync.
type RowStore interface {
	// Get returns the record with the given id, or nil when it does not exist.
	Get(ctx context.Context, id string) (*RowRecord, error)

	// Upsert inserts or replaces a record. It always clears the deletion mark and
	// recomputes the content hash from c.
	Upsert(ctx context.Context, id string, c content.Content, source Provenance, traceID string) error

	// SoftDelete marks the given active records as deleted. Content is kept.
	SoftDelete(ctx context.Context, ids []string, source Provenance, traceID string) error

	// ListActiveIDs returns the ids of all records that are not deleted.
	ListActiveIDs(ctx context.Context) ([]string, error)
}

// ChangeQueue is the outbox of store-side mutations.
type ChangeQueue interface {
	// FetchPending returns up to limit unprocessed entries, oldest id first.
	FetchPending(ctx context.Context, limit int) ([]ChangeEntry, error)

	// MarkProcessed stamps the given entries as processed in one operation.
	MarkProcessed(ctx context.Context, ids []uint64) error
}

// SnapshotArchiver keeps audit copies of grid scans.
type SnapshotArchiver interface {
	Archive(ctx context.Context, snap *Snapshot) error
}
