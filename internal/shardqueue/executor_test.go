package shardqueue

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	clerrors "github.com/stockroom/stockroom-client/internal/errors"
)

func TestExecutor_FIFOPerKey(t *testing.T) {
	ex := New(Config{Shards: 4, QueueSize: 10})
	defer ex.Stop()

	var (
		mu    sync.Mutex
		order []int
	)
	for i := 0; i < 5; i++ {
		v := i
		if err := ex.Submit(context.Background(), "options/units", JobFunc(func(context.Context) error {
			mu.Lock()
			order = append(order, v)
			mu.Unlock()
			return nil
		})); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ex.Barrier(ctx, "options/units"); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 5 {
		t.Fatalf("expected 5 jobs, got %v", order)
	}
	for i, v := range order {
		if i != v {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}

func TestExecutor_QueueFull(t *testing.T) {
	ex := New(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 10 * time.Millisecond})
	defer ex.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))
	err := ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))
	close(release)

	var qf *QueueFullError
	if !errors.As(err, &qf) || !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected queue full, got %v", err)
	}
	if qf.Capacity != 1 {
		t.Fatalf("unexpected capacity %d", qf.Capacity)
	}
}

func TestExecutor_DefaultDoesNotRetry(t *testing.T) {
	var failures int32
	ex := New(Config{Shards: 1, ErrorHandler: func(string, error) { atomic.AddInt32(&failures, 1) }})
	defer ex.Stop()

	var attempts int32
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return clerrors.NewHTTPError(503, "", "fetch options")
	}))
	if err := ex.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
	if got := atomic.LoadInt32(&failures); got != 1 {
		t.Fatalf("expected error handler once, got %d", got)
	}
}

func TestExecutor_RetriesRecoverableOnly(t *testing.T) {
	ex := New(Config{Shards: 1, MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxInterval: 5 * time.Millisecond})
	defer ex.Stop()

	var recoverable, permanent int32
	_ = ex.Submit(context.Background(), "a", JobFunc(func(context.Context) error {
		if atomic.AddInt32(&recoverable, 1) < 3 {
			return clerrors.NewNetworkError("fetch options", errors.New("connection refused"))
		}
		return nil
	}))
	_ = ex.Submit(context.Background(), "a", JobFunc(func(context.Context) error {
		atomic.AddInt32(&permanent, 1)
		return clerrors.NewHTTPError(400, "", "fetch options")
	}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ex.Barrier(ctx, "a"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if got := atomic.LoadInt32(&recoverable); got != 3 {
		t.Fatalf("expected 3 attempts for network failure, got %d", got)
	}
	if got := atomic.LoadInt32(&permanent); got != 1 {
		t.Fatalf("expected a single attempt for 400, got %d", got)
	}
}

func TestExecutor_SkipsCancelledJob(t *testing.T) {
	var handled error
	var mu sync.Mutex
	ex := New(Config{Shards: 1, ErrorHandler: func(_ string, err error) {
		mu.Lock()
		handled = err
		mu.Unlock()
	}})
	defer ex.Stop()

	release := make(chan struct{})
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		<-release
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	var ran int32
	if err := ex.Submit(ctx, "k", JobFunc(func(context.Context) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	})); err != nil {
		t.Fatalf("submit: %v", err)
	}
	cancel()
	close(release)

	if err := ex.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if atomic.LoadInt32(&ran) != 0 {
		t.Fatal("cancelled job should not run")
	}
	mu.Lock()
	defer mu.Unlock()
	if !errors.Is(handled, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", handled)
	}
}

func TestExecutor_SurvivesPanic(t *testing.T) {
	ex := New(Config{Shards: 1})
	defer ex.Stop()

	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { panic("boom") }))
	var ran int32
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	}))
	if err := ex.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if atomic.LoadInt32(&ran) != 1 {
		t.Fatal("worker should keep running after a panic")
	}
}

func TestExecutor_StopRejectsAndDrains(t *testing.T) {
	ex := New(Config{Shards: 2, QueueSize: 8})

	var ran int32
	for i := 0; i < 6; i++ {
		_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&ran, 1)
			return nil
		}))
	}
	ex.Stop()
	ex.Stop()

	if got := atomic.LoadInt32(&ran); got != 6 {
		t.Fatalf("expected all queued jobs to drain, got %d", got)
	}
	if err := ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil })); !errors.Is(err, ErrExecutorClosed) {
		t.Fatalf("expected ErrExecutorClosed, got %v", err)
	}
	if err := ex.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	os.Setenv("STOCKROOM_PREFETCH_SHARDS", "8")
	os.Setenv("STOCKROOM_PREFETCH_MAX_ATTEMPTS", "3")
	defer os.Unsetenv("STOCKROOM_PREFETCH_SHARDS")
	defer os.Unsetenv("STOCKROOM_PREFETCH_MAX_ATTEMPTS")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Shards != 8 || cfg.MaxAttempts != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.QueueSize != 64 || cfg.EnqueueTimeout != 100*time.Millisecond {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}
