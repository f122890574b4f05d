// Package rows is the relational side of the sync: the 'synced_rows' table.
//
// The Repository implements reconcile.RowStore with gorm and works on MySQL and
// SQLite. Every write goes through one upsert path; the provenance column tells
// grid-originated writes apart from store-originated ones. On MySQL the triggers
// installed by the outbox feature copy store-originated writes into the change
// queue.
//
// The feature also exposes the manual store-side surface:
//   - POST /db/upsert writes a row as a store-originated change.
//   - POST /db/delete soft-deletes a row as a store-originated change.
//   - GET /db/rows lists the most recently updated rows.
package rows
