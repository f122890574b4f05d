// Package reconcile is the bidirectional reconciliation engine that keeps a grid
// (a Google Sheets worksheet) and the relational row store eventually consistent.
//
// Neither side offers a transaction spanning both stores, so the engine relies on
// repeated convergent passes instead:
//   - Grid to store: every tick reads the whole grid, fingerprints each row and
//     writes only rows whose content hash changed. Rows that vanished from the
//     grid are soft-deleted in the store (tombstones).
//   - Store to grid: every tick drains a bounded batch of the change queue (an
//     outbox filled by database triggers) and applies each entry to the grid.
//
// # Architecture
//
// The engine consists of three parts:
//
// 1. Adapters: the Grid, RowStore and ChangeQueue interfaces. The feature packages
//    implement them over the Sheets API and gorm; tests use in-memory fakes.
//
// 2. GridToStore: full-scan diff plus set-difference tombstone detection.
//
// 3. StoreToGrid: change-queue drain with per-entry failure isolation.
//
// # Feedback Loops
//
// Every write carries a Provenance. Writes made while syncing from the grid are
// tagged ProvenanceGrid, and the change queue only records writes tagged
// ProvenanceStore. A change applied by the engine is therefore never picked up
// again as a new external change.
//
// # Failure Model
//
// A SchemaError (no header row, no id column) fails the whole tick before any
// write. A failure on a single row or queue entry is logged and skipped; the
// remaining items of the batch still apply. Skipped queue entries stay pending
// and are retried on the next tick, which is safe because upserts and tombstones
// are idempotent.
//
// # Usage Example
//
//	g2s := reconcile.NewGridToStore(gridAdapter, rowRepo, hub, logger)
//	res, err := g2s.Run(ctx)
//
//	s2g := reconcile.NewStoreToGrid(gridAdapter, outboxQueue, hub, logger, 20)
//	res, err := s2g.Run(ctx)
package reconcile
