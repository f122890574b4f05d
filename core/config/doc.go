// Package config provides configuration management for grid-sync.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of each
// section and are registered by reflection, so every key can be overridden by
// an environment variable named SECTION_KEY.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP port, API key, dashboard origin
//   - Database: MySQL (or SQLite) connection details
//   - Sheets: spreadsheet id, sheet name, service account credentials
//   - Sync: polling intervals, change queue batch size, tick timeout
//   - Retry: backoff settings for Sheets API calls
//   - Storage: optional S3/MinIO snapshot archiving
//   - Log: Logging level and format
//
// LoadConfig also rejects non-positive poll intervals and batch sizes.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.GridInterval)
package config
