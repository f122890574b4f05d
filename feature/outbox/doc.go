// Package outbox is the change queue: the 'sync_outbox' table.
//
// Rows are appended by database triggers on 'synced_rows' whenever a write is
// tagged with source 'store'. Writes made while syncing from the grid carry
// source 'grid' and never reach the queue, which keeps the two directions from
// echoing each other.
//
// The Queue implements reconcile.ChangeQueue: entries are read oldest first and
// marked processed once applied to the grid. Entries that fail stay pending and
// are retried on the next tick.
//
// Routes:
//   - GET /outbox/stats returns the number of pending entries.
package outbox
