package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagwars/backend/internal/config"
)

func testPool(t *testing.T, cfg config.WorkerConfig) *Pool {
	t.Helper()
	pool := NewPool(slog.Default(), cfg)
	pool.Start()
	t.Cleanup(pool.Stop)
	return pool
}

func waitFor(t *testing.T, done <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal(msg)
	}
}

func TestPool_DispatchRunsTask(t *testing.T) {
	t.Parallel()

	pool := testPool(t, config.WorkerConfig{Concurrency: 2, QueueSize: 8, MaxRetries: 0})

	done := make(chan struct{})
	pool.Dispatch("test:task", func(ctx context.Context) error {
		close(done)
		return nil
	})

	waitFor(t, done, "task never ran")
}

func TestPool_RetriesFailedTask(t *testing.T) {
	t.Parallel()

	pool := testPool(t, config.WorkerConfig{
		Concurrency: 1,
		QueueSize:   8,
		MaxRetries:  2,
		RetryDelay:  time.Millisecond,
	})

	var attempts atomic.Int32
	done := make(chan struct{})
	pool.Dispatch("test:flaky", func(ctx context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	})

	waitFor(t, done, "task never succeeded")
	assert.Equal(t, int32(3), attempts.Load())
}

func TestPool_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	pool := testPool(t, config.WorkerConfig{
		Concurrency: 1,
		QueueSize:   8,
		MaxRetries:  1,
		RetryDelay:  time.Millisecond,
	})

	var attempts atomic.Int32
	second := make(chan struct{})
	pool.Dispatch("test:doomed", func(ctx context.Context) error {
		if attempts.Add(1) == 2 {
			close(second)
		}
		return errors.New("permanent")
	})

	waitFor(t, second, "retry never happened")

	// A subsequent task still runs: the worker survived the failure.
	done := make(chan struct{})
	pool.Dispatch("test:after", func(ctx context.Context) error {
		close(done)
		return nil
	})
	waitFor(t, done, "worker dead after exhausted retries")
	assert.Equal(t, int32(2), attempts.Load())
}

func TestPool_PanicDoesNotKillWorker(t *testing.T) {
	t.Parallel()

	pool := testPool(t, config.WorkerConfig{Concurrency: 1, QueueSize: 8, MaxRetries: 0})

	panicked := make(chan struct{})
	pool.Dispatch("test:panic", func(ctx context.Context) error {
		close(panicked)
		panic("boom")
	})
	waitFor(t, panicked, "panicking task never ran")

	done := make(chan struct{})
	pool.Dispatch("test:survivor", func(ctx context.Context) error {
		close(done)
		return nil
	})
	waitFor(t, done, "worker dead after task panic")
}

func TestPool_QueueFullDropsTask(t *testing.T) {
	t.Parallel()

	pool := NewPool(slog.Default(), config.WorkerConfig{Concurrency: 1, QueueSize: 1})
	// Not started: nothing drains the queue.
	t.Cleanup(pool.Stop)

	pool.Dispatch("test:fills", func(ctx context.Context) error { return nil })

	// Queue is full; this must not block.
	dispatched := make(chan struct{})
	go func() {
		pool.Dispatch("test:dropped", func(ctx context.Context) error { return nil })
		close(dispatched)
	}()
	waitFor(t, dispatched, "dispatch blocked on a full queue")
}

func TestPool_StopWaitsForInFlightTask(t *testing.T) {
	t.Parallel()

	pool := NewPool(slog.Default(), config.WorkerConfig{Concurrency: 1, QueueSize: 8})
	pool.Start()

	started := make(chan struct{})
	var finished atomic.Bool
	pool.Dispatch("test:slow", func(ctx context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	waitFor(t, started, "task never started")
	pool.Stop()
	require.True(t, finished.Load(), "Stop returned before the in-flight task finished")
}
