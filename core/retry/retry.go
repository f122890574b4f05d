package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"grid-sync/core/metrics"

	"go.uber.org/zap"
)

// Error is returned when a call fails for good, either because the error was not
// retryable or because the retries ran out. It unwraps to the last error.
type Error struct {
	Label     string
	Attempts  int
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Label, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Executor runs calls with backoff.
type Executor struct {
	cfg    Config
	logger *zap.Logger

	// sleep waits for d or until ctx is done. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
	// jitter returns a random duration in [0, max).
	jitter func(max time.Duration) time.Duration
}

// New creates an Executor. A nil logger disables logging.
func New(cfg Config, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Executor{
		cfg:    cfg,
		logger: logger,
		sleep:  sleepContext,
		jitter: randomJitter,
	}
}

// Do invokes fn until it succeeds, fails with a non-retryable error, or the
// retries are exhausted.
func (e *Executor) Do(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	attempt := 0
	for {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		attempt++

		retryable := IsRetryable(err)
		if !retryable || attempt > e.cfg.Retries {
			e.logger.Error("External call failed, giving up",
				zap.String("label", label),
				zap.Int("attempt", attempt),
				zap.Int("retries", e.cfg.Retries),
				zap.Int("code", StatusCode(err)),
				zap.Bool("retryable", retryable),
				zap.Error(err),
			)
			metrics.RetryGiveUps.WithLabelValues(operation(label)).Inc()
			return &Error{Label: label, Attempts: attempt, Retryable: retryable, Err: err}
		}

		wait := e.Backoff(attempt)
		e.logger.Warn("External call failed, retrying",
			zap.String("label", label),
			zap.Int("attempt", attempt),
			zap.Int("retries", e.cfg.Retries),
			zap.Int("code", StatusCode(err)),
			zap.Duration("wait", wait),
		)
		metrics.Retries.WithLabelValues(operation(label)).Inc()

		if sleepErr := e.sleep(ctx, wait); sleepErr != nil {
			return &Error{Label: label, Attempts: attempt, Retryable: true, Err: errors.Join(err, sleepErr)}
		}
	}
}

// DoValue is Do for calls that return a value.
func DoValue[T any](ctx context.Context, e *Executor, label string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := e.Do(ctx, label, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Backoff returns the wait before the given retry (1-based).
func (e *Executor) Backoff(attempt int) time.Duration {
	return e.baseDelay(attempt) + e.jitterFor()
}

func (e *Executor) baseDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := e.cfg.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= e.cfg.MaxDelay {
			return e.cfg.MaxDelay
		}
	}
	if d > e.cfg.MaxDelay {
		return e.cfg.MaxDelay
	}
	return d
}

func (e *Executor) jitterFor() time.Duration {
	if e.cfg.Jitter <= 0 {
		return 0
	}
	return e.jitter(e.cfg.Jitter)
}

// operation trims a label such as "sheets.update id=42" down to "sheets.update"
// so that metric labels stay low-cardinality.
func operation(label string) string {
	for i := 0; i < len(label); i++ {
		if label[i] == ' ' {
			return label[:i]
		}
	}
	return label
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func randomJitter(max time.Duration) time.Duration {
	return time.Duration(rand.Int64N(int64(max)))
}
