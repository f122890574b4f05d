package scheduler

import "time"

// Config holds the cadence of both sync directions.
type Config struct {
	// GridInterval is the period of the grid to store poller.
	GridInterval time.Duration `mapstructure:"grid_interval" default:"3s"`
	// StoreInterval is the period of the store to grid poller.
	StoreInterval time.Duration `mapstructure:"store_interval" default:"1500ms"`
	// BatchSize is the number of change queue entries drained per tick.
	BatchSize int `mapstructure:"batch_size" default:"20"`
	// TickTimeout bounds a single tick. Zero means unbounded.
	TickTimeout time.Duration `mapstructure:"tick_timeout" default:"0s"`
}
