package reconcile

import (
	"time"

	"grid-sync/core/content"
)

// Provenance records which side produced the last write of a row.
//
// Invariant: the change queue is populated only by writes tagged ProvenanceStore.
// Every write the engine makes while syncing from the grid is tagged
// ProvenanceGrid, so it never travels back to the grid.
type Provenance string

const (
	// ProvenanceGrid marks writes that originate from the grid.
	ProvenanceGrid Provenance = "grid"
	// ProvenanceStore marks writes that originate in the relational store.
	ProvenanceStore Provenance = "store"
)

// Valid reports whether p is one of the known provenances.
func (p Provenance) Valid() bool {
	return p == ProvenanceGrid || p == ProvenanceStore
}

// ChangeType is the kind of mutation recorded in the change queue.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Direction names a sync direction in logs and metrics.
type Direction string

const (
	DirectionGridToStore Direction = "grid_to_store"
	DirectionStoreToGrid Direction = "store_to_grid"
)

// RowRecord is a row as stored in the relational store.
type RowRecord struct {
	// ID is the stable external identifier shared with the grid's id column.
	ID string `json:"id"`

	// Content is the row payload.
	Content content.Content `json:"content"`

	// Hash is the fingerprint of Content at write time.
	Hash string `json:"hash"`

	// DeletedAt is set when the row is tombstoned.
	DeletedAt *time.Time `json:"deleted_at"`

	// Source is the provenance of the last write.
	Source Provenance `json:"source"`

	// TraceID correlates the write with a tick or manual request.
	TraceID string `json:"trace_id,omitempty"`

	// UpdatedAt is the time of the last write.
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the record is not deleted.
func (r *RowRecord) Active() bool {
	return r.DeletedAt == nil
}

// ChangeEntry is one pending mutation in the change queue.
type ChangeEntry struct {
	ID      uint64
	Type    ChangeType
	RowID   string
	Content *content.Content // nil for deletes
	Source  Provenance
	TraceID string
}

// GridRow is a data row of the grid.
type GridRow struct {
	// Number is the 1-based physical row number in the sheet.
	Number int `json:"number"`

	// Content maps normalized header keys to cell values.
	Content content.Content `json:"content"`
}

// ID returns the row's id cell.
func (r GridRow) ID() string {
	return r.Content.Text("id")
}

// Snapshot is the result of a full grid read.
type Snapshot struct {
	// Headers are the normalized header keys, positionally.
	Headers []string `json:"headers"`

	// Rows are the data rows that carry an id.
	Rows []GridRow `json:"rows"`

	// ReadAt is when the grid was read.
	ReadAt time.Time `json:"read_at"`
}

// GridToStoreResult summarizes a grid to store tick.
type GridToStoreResult struct {
	TraceID    string `json:"trace_id"`
	Rows       int    `json:"rows"`
	Inserted   int    `json:"inserted"`
	Updated    int    `json:"updated"`
	Deleted    int    `json:"deleted"`
	Failed     int    `json:"failed"`
	Duplicates int    `json:"duplicates"`
}

// Changed reports whether the tick wrote anything.
func (r *GridToStoreResult) Changed() bool {
	return r.Inserted+r.Updated+r.Deleted > 0
}

// StoreToGridResult summarizes a store to grid tick.
type StoreToGridResult struct {
	Fetched   int `json:"fetched"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}
