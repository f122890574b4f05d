package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"grid-sync/core/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrBusy is returned by TryRun while a tick is in flight.
var ErrBusy = errors.New("tick already running")

// Runner is anything Run can drive.
type Runner interface {
	Run(ctx context.Context) error
}

// Poller runs a tick function periodically without overlap.
type Poller[T any] struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	fn       func(ctx context.Context) (T, error)
	logger   *zap.Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewPoller creates a poller. name labels logs and metrics.
func NewPoller[T any](name string, interval time.Duration, fn func(ctx context.Context) (T, error), logger *zap.Logger) *Poller[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller[T]{
		name:     name,
		interval: interval,
		fn:       fn,
		logger:   logger.With(zap.String("direction", name)),
	}
}

// WithTimeout bounds each tick. Zero disables the bound.
func (p *Poller[T]) WithTimeout(d time.Duration) *Poller[T] {
	p.timeout = d
	return p
}

// Name returns the poller's name.
func (p *Poller[T]) Name() string {
	return p.name
}

// Busy reports whether a tick is in flight.
func (p *Poller[T]) Busy() bool {
	return p.running.Load()
}

// TryRun runs one tick synchronously, or returns ErrBusy when one is already
// running. Run's shutdown waits for it like for a scheduled tick.
func (p *Poller[T]) TryRun(ctx context.Context) (T, error) {
	if !p.running.CompareAndSwap(false, true) {
		var zero T
		return zero, ErrBusy
	}
	p.wg.Add(1)
	defer p.wg.Done()
	defer p.running.Store(false)
	return p.tick(ctx)
}

// Run ticks immediately and then every interval until ctx is done. It returns
// after the in-flight tick, if any, has finished.
func (p *Poller[T]) Run(ctx context.Context) error {
	if p.interval <= 0 {
		return fmt.Errorf("poller %s: interval must be positive", p.name)
	}

	p.logger.Info("Poller started", zap.Duration("interval", p.interval))

	// Ticks outlive shutdown; only TickTimeout bounds them.
	tickCtx := context.WithoutCancel(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.launch(tickCtx)
	for {
		select {
		case <-ctx.Done():
			p.wg.Wait()
			p.logger.Info("Poller stopped")
			return nil
		case <-ticker.C:
			p.launch(tickCtx)
		}
	}
}

func (p *Poller[T]) launch(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		p.logger.Debug("Previous tick still running, skipping")
		metrics.TicksSkipped.WithLabelValues(p.name).Inc()
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.running.Store(false)
		_, _ = p.tick(ctx)
	}()
}

func (p *Poller[T]) tick(ctx context.Context) (res T, err error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panicked: %v", r)
		}

		outcome := "ok"
		if err != nil {
			outcome = "error"
			p.logger.Error("Poller tick failed", zap.Error(err))
		}
		metrics.Ticks.WithLabelValues(p.name, outcome).Inc()
		metrics.TickDuration.WithLabelValues(p.name).Observe(time.Since(start).Seconds())
	}()

	return p.fn(ctx)
}

// Run drives all runners until ctx is done or one of them fails.
func Run(ctx context.Context, runners ...Runner) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		g.Go(func() error {
			return r.Run(ctx)
		})
	}
	return g.Wait()
}
