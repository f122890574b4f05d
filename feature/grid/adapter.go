package grid

import (
	"context"
	"errors"
	"strings"
	"time"

	"grid-sync/core/content"
	"grid-sync/core/reconcile"
	"grid-sync/core/retry"
	"grid-sync/core/sheets"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Adapter implements reconcile.Grid over a sheets.Client.
type Adapter struct {
	client sheets.Client
	sheet  string
	retry  *retry.Executor
	logger *zap.Logger
	reads  singleflight.Group
	now    func() time.Time
}

var _ reconcile.Grid = (*Adapter)(nil)

// NewAdapter creates a grid adapter for one worksheet.
func NewAdapter(client sheets.Client, sheetName string, exec *retry.Executor, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		client: client,
		sheet:  sheetName,
		retry:  exec,
		logger: logger,
		now:    time.Now,
	}
}

// SheetName returns the worksheet the adapter works on.
func (a *Adapter) SheetName() string {
	return a.sheet
}

func (a *Adapter) readRange() string {
	return sheets.Range(a.sheet, "A:"+sheets.LastColumn)
}

// fetch reads the full used range with its own request.
func (a *Adapter) fetch(ctx context.Context) ([][]string, error) {
	rng := a.readRange()
	return retry.DoValue(ctx, a.retry, "sheets.read", func(ctx context.Context) ([][]string, error) {
		return a.client.Get(ctx, rng)
	})
}

// values is fetch for read-only callers: concurrent scans share one request,
// so the returned slices must not be modified. Writes never use it, since a
// shared read may predate their own earlier append.
func (a *Adapter) values(ctx context.Context) ([][]string, error) {
	rng := a.readRange()

	v, err, shared := a.reads.Do(rng, func() (interface{}, error) {
		return a.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		a.logger.Debug("Coalesced grid read", zap.String("range", rng))
	}
	return v.([][]string), nil
}

// ReadAll implements reconcile.GridReader.
func (a *Adapter) ReadAll(ctx context.Context) (*reconcile.Snapshot, error) {
	values, err := a.values(ctx)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, &reconcile.SchemaError{Reason: "sheet " + a.sheet + " has no header row"}
	}

	headers := NormalizeHeaders(values[0])
	idCol := indexOf(headers, "id")
	if idCol == -1 {
		// Without ids every row would look deleted.
		return nil, &reconcile.SchemaError{Reason: "sheet " + a.sheet + " must have an id column"}
	}
	if idCol != 0 {
		a.logger.Warn("First header is not id, id mapping may break", zap.Strings("headers", headers))
	}

	snap := &reconcile.Snapshot{
		Headers: headers,
		Rows:    make([]reconcile.GridRow, 0, len(values)-1),
		ReadAt:  a.now(),
	}
	for i := 1; i < len(values); i++ {
		c := rowContent(headers, values[i])
		if c.Text("id") == "" {
			continue
		}
		snap.Rows = append(snap.Rows, reconcile.GridRow{Number: i + 1, Content: c})
	}

	return snap, nil
}

// locate reads the grid and returns the normalized headers plus the 1-based row
// number of the first row whose id cell matches, or 0 when none does.
func (a *Adapter) locate(ctx context.Context, id string) ([]string, int, error) {
	values, err := a.fetch(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(values) == 0 {
		return nil, 0, &reconcile.SchemaError{Reason: "sheet " + a.sheet + " is empty: missing headers"}
	}

	headers := NormalizeHeaders(values[0])
	idCol := indexOf(headers, "id")
	if idCol == -1 {
		return nil, 0, &reconcile.SchemaError{Reason: "sheet " + a.sheet + " must have an id column"}
	}

	// Linear scan; first match wins.
	for i := 1; i < len(values); i++ {
		row := values[i]
		if idCol < len(row) && strings.TrimSpace(row[idCol]) == id {
			return headers, i + 1, nil
		}
	}
	return headers, 0, nil
}

// UpsertByID implements reconcile.GridWriter.
func (a *Adapter) UpsertByID(ctx context.Context, c content.Content) error {
	id := c.Text("id")
	if id == "" {
		return &reconcile.RecordError{Op: "upsert", Err: errors.New("content has no id")}
	}

	headers, rowNum, err := a.locate(ctx, id)
	if err != nil {
		return err
	}
	cells := [][]string{rowCells(headers, c)}

	if rowNum == 0 {
		err = a.retry.Do(ctx, "sheets.append id="+id, func(ctx context.Context) error {
			return a.client.Append(ctx, sheets.Range(a.sheet, "A1"), cells)
		})
		if err != nil {
			return err
		}
		a.logger.Info("Appended row to sheet", zap.String("id", id))
		return nil
	}

	err = a.retry.Do(ctx, "sheets.update id="+id, func(ctx context.Context) error {
		return a.client.Update(ctx, sheets.RowRange(a.sheet, rowNum), cells)
	})
	if err != nil {
		return err
	}
	a.logger.Info("Updated sheet row", zap.String("id", id), zap.Int("row", rowNum))
	return nil
}

// TombstoneByID implements reconcile.GridWriter.
func (a *Adapter) TombstoneByID(ctx context.Context, rowID string) error {
	id := strings.TrimSpace(rowID)

	_, rowNum, err := a.locate(ctx, id)
	if err != nil {
		return err
	}
	if rowNum == 0 {
		return nil
	}

	err = a.retry.Do(ctx, "sheets.clear id="+id, func(ctx context.Context) error {
		return a.client.Clear(ctx, sheets.RowRange(a.sheet, rowNum))
	})
	if err != nil {
		return err
	}
	a.logger.Info("Cleared (soft deleted) sheet row", zap.String("id", id), zap.Int("row", rowNum))
	return nil
}

// Preview returns up to limit raw rows, header row included.
func (a *Adapter) Preview(ctx context.Context, limit int) ([][]string, error) {
	values, err := a.values(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	return values, nil
}
