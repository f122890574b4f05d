// Package grid implements the grid side of the sync over a Google Sheets worksheet.
//
// The Adapter translates between sheet cells and row content:
//   - Row 1 is the header row. Header tokens are normalized into content keys.
//   - Each following row with a non-empty id cell is a data row.
//   - Writes align content to the header columns by normalized key.
//
// Deletion never removes a physical row, since that would shift the position of
// every row below it. A tombstone clears the row's cells instead.
//
// Every call to the Sheets API passes through the retry executor. Concurrent
// identical reads are coalesced so both sync directions share one API call.
//
// The Archiver optionally writes each changing grid scan to object storage as a
// JSON snapshot for auditing.
package grid
