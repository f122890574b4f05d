// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL (production) or SQLite
// (tests and local runs) connections from the application's configuration.
//
// # Connect
//
// Connect opens the configured driver, applies pool settings and pings the
// database. The MySQL DSN carries connect, read and write timeouts.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns on both dialects. VerifySchema uses it
// at startup to check that the sync tables exist with the columns the engine
// reads and writes.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	err = database.VerifySchema(db, "synced_rows", []string{"id", "row_json", "row_hash"})
package database
