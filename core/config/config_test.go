package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "Sheet1", cfg.Sheets.SheetName)
	assert.Equal(t, 30, cfg.Sheets.TimeoutSeconds)
	assert.Equal(t, 3*time.Second, cfg.Sync.GridInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.Sync.StoreInterval)
	assert.Equal(t, 20, cfg.Sync.BatchSize)
	assert.Equal(t, time.Duration(0), cfg.Sync.TickTimeout)
	assert.Equal(t, 4, cfg.Retry.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 4*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 150*time.Millisecond, cfg.Retry.Jitter)
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SHEETS_SHEET_NAME", "Inventory")
	t.Setenv("SYNC_GRID_INTERVAL", "10s")
	t.Setenv("RETRY_RETRIES", "2")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "Inventory", cfg.Sheets.SheetName)
	assert.Equal(t, 10*time.Second, cfg.Sync.GridInterval)
	assert.Equal(t, 2, cfg.Retry.Retries)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SHEETS_SPREADSHEET_ID=abc123\nSERVER_API_KEY=secret\n"), 0o600)
	require.NoError(t, err)
	t.Cleanup(func() {
		os.Unsetenv("SHEETS_SPREADSHEET_ID")
		os.Unsetenv("SERVER_API_KEY")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "secret", cfg.Server.ApiKey)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "zero grid interval", key: "SYNC_GRID_INTERVAL", val: "0s"},
		{name: "zero batch", key: "SYNC_BATCH_SIZE", val: "0"},
		{name: "negative retries", key: "RETRY_RETRIES", val: "-1"},
		{name: "negative retain", key: "STORAGE_RETAIN", val: "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadConfig(t.TempDir())
			assert.Error(t, err)
		})
	}
}
