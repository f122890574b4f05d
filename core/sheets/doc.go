// Package sheets provides the Google Sheets transport used by the grid adapter.
//
// It exposes a narrow Client interface over the spreadsheets.values API (get,
// append, update, clear) so callers and tests never depend on the generated API
// types. Every call is bounded by the configured per-call timeout.
//
// # Usage Example
//
//	client, err := sheets.NewClient(ctx, cfg)
//	rows, err := client.Get(ctx, sheets.Range(cfg.SheetName, "A:ZZ"))
package sheets
