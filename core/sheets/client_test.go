package sheets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRange(t *testing.T) {
	tests := []struct {
		name  string
		sheet string
		a1    string
		want  string
	}{
		{name: "plain", sheet: "Sheet1", a1: "A:ZZ", want: "'Sheet1'!A:ZZ"},
		{name: "spaces", sheet: "My Rows", a1: "A1", want: "'My Rows'!A1"},
		{name: "quote", sheet: "Bob's", a1: "A1", want: "'Bob''s'!A1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Range(tt.sheet, tt.a1))
		})
	}
}

func TestRowRange(t *testing.T) {
	assert.Equal(t, "'Sheet1'!A7:ZZ7", RowRange("Sheet1", 7))
}

func TestToStrings(t *testing.T) {
	got := toStrings([][]interface{}{{"id", "name"}, {"1", 2.5, true}, {}})
	assert.Equal(t, [][]string{{"id", "name"}, {"1", "2.5", "true"}, {}}, got)
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		expectErr string
	}{
		{
			name:      "missing spreadsheet",
			cfg:       Config{CredentialsJSON: "{}"},
			expectErr: "spreadsheet_id is required",
		},
		{
			name:      "missing credentials",
			cfg:       Config{SpreadsheetID: "abc"},
			expectErr: "no credentials configured",
		},
		{
			name:      "credentials file not found",
			cfg:       Config{SpreadsheetID: "abc", CredentialsFile: "/nonexistent/key.json"},
			expectErr: "credentials file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tt.cfg)
			assert.Nil(t, client)
			assert.ErrorContains(t, err, tt.expectErr)
		})
	}
}
