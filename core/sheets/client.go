package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"grid-sync/core/utils"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// valueInputOption makes the grid parse written values as if typed by a user.
const valueInputOption = "USER_ENTERED"

// Client defines the grid operations used by the adapter.
type Client interface {
	// Get returns the cell values of a range as strings. Trailing empty cells and
	// rows are omitted by the API.
	Get(ctx context.Context, rng string) ([][]string, error)
	// Append writes rows after the last non-empty row of the range's table.
	Append(ctx context.Context, rng string, rows [][]string) error
	// Update overwrites the cells of a range.
	Update(ctx context.Context, rng string, rows [][]string) error
	// Clear empties the cells of a range without removing the row.
	Clear(ctx context.Context, rng string) error
}

// NewClient creates a Sheets client for the configured spreadsheet.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("sheets: spreadsheet_id is required")
	}

	opts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsScope)}
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		if _, err := os.Stat(cfg.CredentialsFile); err != nil {
			return nil, fmt.Errorf("sheets: credentials file: %w", err)
		}
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		return nil, errors.New("sheets: no credentials configured")
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	return &serviceClient{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		timeout:       time.Duration(timeout) * time.Second,
	}, nil
}

type serviceClient struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
	timeout       time.Duration
}

func (c *serviceClient) Get(ctx context.Context, rng string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return toStrings(resp.Values), nil
}

func (c *serviceClient) Append(ctx context.Context, rng string, rows [][]string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.values.Append(c.spreadsheetID, rng, &sheetsapi.ValueRange{Values: toValues(rows)}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	return err
}

func (c *serviceClient) Update(ctx context.Context, rng string, rows [][]string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.values.Update(c.spreadsheetID, rng, &sheetsapi.ValueRange{Values: toValues(rows)}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	return err
}

func (c *serviceClient) Clear(ctx context.Context, rng string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.values.Clear(c.spreadsheetID, rng, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = utils.ToString(v)
		}
		out[i] = cells
	}
	return out
}

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}
