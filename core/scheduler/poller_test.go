package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_FirstTickIsImmediate(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller("test", time.Hour, func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- p.Run(ctx) }()

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestPoller_TicksPeriodically(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller("test", 20*time.Millisecond, func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- p.Run(ctx) }()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestPoller_NoOverlap(t *testing.T) {
	var active, maxActive, calls atomic.Int32
	release := make(chan struct{})

	p := NewPoller("test", 5*time.Millisecond, func(ctx context.Context) (int, error) {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		calls.Add(1)
		<-release
		return 0, nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- p.Run(ctx) }()

	// Many intervals elapse while the first tick blocks.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "skipped ticks are not queued")
	assert.True(t, p.Busy())

	cancel()
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), maxActive.Load())
}

func TestPoller_TryRun(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	p := NewPoller("test", time.Hour, func(ctx context.Context) (string, error) {
		close(started)
		<-release
		return "done", nil
	}, nil)

	result := make(chan string)
	go func() {
		res, err := p.TryRun(context.Background())
		assert.NoError(t, err)
		result <- res
	}()

	<-started
	_, err := p.TryRun(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	assert.Equal(t, "done", <-result)
	assert.False(t, p.Busy())
}

func TestPoller_ErrorsDoNotStopPolling(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller("test", 5*time.Millisecond, func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("sheets unavailable")
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- p.Run(ctx) }()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestPoller_PanicIsRecovered(t *testing.T) {
	p := NewPoller("test", time.Hour, func(ctx context.Context) (int, error) {
		panic("boom")
	}, nil)

	_, err := p.TryRun(context.Background())
	assert.ErrorContains(t, err, "tick panicked: boom")
	assert.False(t, p.Busy())
}

func TestPoller_ShutdownWaitsForRunningTick(t *testing.T) {
	var finished atomic.Bool
	started := make(chan struct{})

	p := NewPoller("test", time.Hour, func(ctx context.Context) (int, error) {
		close(started)
		time.Sleep(30 * time.Millisecond)
		finished.Store(ctx.Err() == nil)
		return 0, nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- p.Run(ctx) }()

	<-started
	cancel()
	require.NoError(t, <-done)
	assert.True(t, finished.Load(), "running tick is not cancelled by shutdown")
}

func TestPoller_ShutdownWaitsForManualTick(t *testing.T) {
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})

	p := NewPoller("test", time.Hour, func(ctx context.Context) (int, error) {
		if calls.Add(1) == 2 {
			close(entered)
			<-release
		}
		return 0, nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() == 1 && !p.Busy() }, time.Second, time.Millisecond)

	manual := make(chan error, 1)
	go func() {
		_, err := p.TryRun(context.Background())
		manual <- err
	}()
	<-entered

	cancel()
	select {
	case <-done:
		t.Fatal("Run returned while a manual tick was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-manual)
	require.NoError(t, <-done)
}

func TestPoller_TickTimeout(t *testing.T) {
	p := NewPoller("test", time.Hour, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, nil).WithTimeout(10 * time.Millisecond)

	_, err := p.TryRun(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPoller_InvalidInterval(t *testing.T) {
	p := NewPoller("test", 0, func(ctx context.Context) (int, error) { return 0, nil }, nil)
	assert.Error(t, p.Run(context.Background()))
}

func TestRun(t *testing.T) {
	var a, b atomic.Int32
	pa := NewPoller("a", 5*time.Millisecond, func(ctx context.Context) (int, error) { a.Add(1); return 0, nil }, nil)
	pb := NewPoller("b", 5*time.Millisecond, func(ctx context.Context) (int, error) { b.Add(1); return 0, nil }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- Run(ctx, pa, pb) }()

	assert.Eventually(t, func() bool { return a.Load() >= 2 && b.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestRun_StopsOnRunnerError(t *testing.T) {
	bad := NewPoller("bad", 0, func(ctx context.Context) (int, error) { return 0, nil }, nil)
	good := NewPoller("good", time.Hour, func(ctx context.Context) (int, error) { return 0, nil }, nil)

	err := Run(context.Background(), bad, good)
	assert.Error(t, err)
}
