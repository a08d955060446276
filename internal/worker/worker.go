// Package worker is the in-process task runner: a bounded queue drained by a
// goroutine pool, with per-task retry and panic isolation. Dispatch is
// fire-and-forget, so gameplay never waits on background work.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/flagwars/backend/internal/config"
)

// task is one unit of background work. Tasks must be idempotent: retry and
// at-least-once delivery mean a task can run more than once.
type task struct {
	name string
	fn   func(ctx context.Context) error
}

// Pool runs dispatched tasks on a fixed set of workers.
type Pool struct {
	queue chan task
	log   *slog.Logger
	cfg   config.WorkerConfig

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewPool creates a task pool. Call Start to launch the workers.
func NewPool(log *slog.Logger, cfg config.WorkerConfig) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		queue:  make(chan task, cfg.QueueSize),
		log:    log.With("component", "worker"),
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the worker goroutines. Safe to call once.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.cfg.Concurrency; i++ {
			p.wg.Add(1)
			go p.worker()
		}
		p.log.Info("worker pool started", "concurrency", p.cfg.Concurrency, "queue_size", p.cfg.QueueSize)
	})
}

// Dispatch enqueues a named task and returns immediately. When the queue is
// full or the pool is shutting down the task is dropped with a log line:
// every consumer recomputes from source truth, so a dropped task costs
// freshness, not correctness.
func (p *Pool) Dispatch(name string, fn func(ctx context.Context) error) {
	select {
	case <-p.ctx.Done():
		p.log.Warn("task dropped, pool shutting down", "task", name)
	case p.queue <- task{name: name, fn: fn}:
	default:
		p.log.Warn("task dropped, queue full", "task", name)
	}
}

// Stop drains in-flight tasks and shuts the pool down. Queued tasks that have
// not started yet are dropped.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		p.wg.Wait()
		p.log.Info("worker pool stopped")
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case t := <-p.queue:
			p.run(t)
		}
	}
}

// run executes one task with retries. A panic in a task is contained to that
// attempt and counted as a failure.
func (p *Pool) run(t task) {
	var err error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-p.ctx.Done():
				p.log.Warn("task abandoned on shutdown", "task", t.name, "attempt", attempt)
				return
			case <-time.After(p.cfg.RetryDelay):
			}
		}

		err = p.attempt(t)
		if err == nil {
			if attempt > 0 {
				p.log.Info("task succeeded after retry", "task", t.name, "attempt", attempt)
			}
			return
		}
		p.log.Warn("task failed", "task", t.name, "attempt", attempt, "error", err)
	}
	p.log.Error("task exhausted retries", "task", t.name, "error", err)
}

func (p *Pool) attempt(t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("task panicked", "task", t.name, "panic", r)
			err = errPanicked
		}
	}()
	return t.fn(p.ctx)
}

var errPanicked = errors.New("task panicked")
