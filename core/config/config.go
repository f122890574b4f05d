package config

import (
	"fmt"
	"reflect"
	"strings"

	"grid-sync/core/database"
	"grid-sync/core/logger"
	"grid-sync/core/retry"
	"grid-sync/core/scheduler"
	"grid-sync/core/server"
	"grid-sync/core/sheets"
	"grid-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration of the sync engine, one section per package.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for snapshot archiving (S3, MinIO).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Sheets holds configuration for the Google Sheets connection.
	Sheets sheets.Config `mapstructure:"sheets"`
	// Sync holds the polling cadence of both sync directions.
	Sync scheduler.Config `mapstructure:"sync"`
	// Retry holds the backoff settings for Sheets API calls.
	Retry retry.Config `mapstructure:"retry"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SHEETS_SHEET_NAME -> sheets.sheet_name)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the pollers cannot run with. Sheets credentials are
// checked later, when the client is built, so that migrate works without them.
func (c *Config) Validate() error {
	switch {
	case c.Sync.GridInterval <= 0:
		return fmt.Errorf("sync.grid_interval must be positive, got %s", c.Sync.GridInterval)
	case c.Sync.StoreInterval <= 0:
		return fmt.Errorf("sync.store_interval must be positive, got %s", c.Sync.StoreInterval)
	case c.Sync.BatchSize <= 0:
		return fmt.Errorf("sync.batch_size must be positive, got %d", c.Sync.BatchSize)
	case c.Sync.TickTimeout < 0:
		return fmt.Errorf("sync.tick_timeout must not be negative, got %s", c.Sync.TickTimeout)
	case c.Retry.Retries < 0:
		return fmt.Errorf("retry.retries must not be negative, got %d", c.Retry.Retries)
	case c.Storage.Retain < 0:
		return fmt.Errorf("storage.retain must not be negative, got %d", c.Storage.Retain)
	}
	return nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
