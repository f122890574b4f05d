package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Host:           "localhost",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "grid_sync",
			Driver:         "mysql",
			TimeoutSeconds: 1,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("Unsupported Driver", func(t *testing.T) {
		db, err := Connect(Config{Driver: "oracle"})
		assert.ErrorContains(t, err, "unsupported database driver")
		assert.Nil(t, db)
	})

	t.Run("SQLite In Memory", func(t *testing.T) {
		db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
		assert.NoError(t, err)
		assert.NotNil(t, db)
	})
}

func TestMySQLDSN(t *testing.T) {
	cfg := Config{
		Host:     "db.internal",
		Port:     3306,
		User:     "sync",
		Password: "p@ss:word",
		Name:     "grid_sync",
	}

	dsn := mysqlDSN(cfg, 5)
	assert.Equal(t, "sync:p%40ss%3Aword@tcp(db.internal:3306)/grid_sync?charset=utf8mb4&parseTime=True&loc=UTC&timeout=5s&readTimeout=5s&writeTimeout=5s", dsn)

	cfg.TLS = "skip-verify"
	assert.Contains(t, mysqlDSN(cfg, 5), "&tls=skip-verify")
}
