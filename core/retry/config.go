package retry

import "time"

// Config holds the backoff settings for the retry executor.
type Config struct {
	// Retries is the number of retries after the first attempt.
	Retries int `mapstructure:"retries" default:"4"`
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration `mapstructure:"base_delay" default:"250ms"`
	// MaxDelay caps the exponential part of the delay.
	MaxDelay time.Duration `mapstructure:"max_delay" default:"4s"`
	// Jitter is the upper bound of the random delay added to each wait.
	Jitter time.Duration `mapstructure:"jitter" default:"150ms"`
}

// DefaultConfig returns the default backoff settings.
func DefaultConfig() Config {
	return Config{
		Retries:   4,
		BaseDelay: 250 * time.Millisecond,
		MaxDelay:  4 * time.Second,
		Jitter:    150 * time.Millisecond,
	}
}
