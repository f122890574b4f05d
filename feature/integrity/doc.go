// Package integrity reports whether the pieces the sync engine relies on are in
// the shape it expects.
//
// Checks:
//   - schema: both tables exist with the columns and types of their models.
//   - triggers: the change queue triggers are installed on 'synced_rows'.
//   - grid: the header row has an id column; duplicate ids and rows without
//     an id are reported as warnings.
//   - storage: the snapshot bucket exists. ?fix=true creates it.
//
// Routes live under /integrity; GET /integrity runs every check.
package integrity
