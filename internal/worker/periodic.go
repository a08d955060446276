package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/flagwars/backend/internal/config"
	"github.com/flagwars/backend/internal/domain"
)

// statsSweeper refreshes aggregates for recently active users.
type statsSweeper interface {
	SweepActive(ctx context.Context) (int, error)
}

// sessionSealer completes sessions abandoned past the cutoff.
type sessionSealer interface {
	SealStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// snapshotter persists the current leaderboard top.
type snapshotter interface {
	Snapshot(ctx context.Context) (*domain.LeaderboardSnapshot, error)
}

// Scheduler runs the periodic maintenance jobs on fixed tickers: the daily
// stats sweep, stale-session cleanup and the leaderboard snapshot. Every job
// recomputes from source truth, so skipped or doubled runs are harmless.
type Scheduler struct {
	stats    statsSweeper
	sessions sessionSealer
	board    snapshotter
	log      *slog.Logger
	cfg      config.WorkerConfig

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewScheduler creates a periodic job scheduler. Call Start to launch it.
func NewScheduler(
	log *slog.Logger,
	stats statsSweeper,
	sessions sessionSealer,
	board snapshotter,
	cfg config.WorkerConfig,
) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		stats:    stats,
		sessions: sessions,
		board:    board,
		log:      log.With("component", "scheduler"),
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches one goroutine per job.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		s.runEvery("stats_sweep", s.cfg.SweepInterval, s.sweepStats)
		s.runEvery("session_cleanup", s.cfg.CleanupInterval, s.cleanupSessions)
		s.runEvery("leaderboard_snapshot", s.cfg.SnapshotInterval, s.snapshotLeaderboard)
		s.log.Info("scheduler started",
			"sweep_interval", s.cfg.SweepInterval,
			"cleanup_interval", s.cfg.CleanupInterval,
			"snapshot_interval", s.cfg.SnapshotInterval,
		)
	})
}

// Stop cancels all jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.log.Info("scheduler stopped")
	})
}

func (s *Scheduler) runEvery(name string, interval time.Duration, job func(ctx context.Context) error) {
	if interval <= 0 {
		s.log.Warn("periodic job disabled", "job", name)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if err := s.runJob(name, job); err != nil {
					s.log.Error("periodic job failed", "job", name, "error", err)
				}
			}
		}
	}()
}

// runJob contains a single run, isolating panics so one bad run cannot kill
// the ticker goroutine.
func (s *Scheduler) runJob(name string, job func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("periodic job panicked", "job", name, "panic", r)
			err = errPanicked
		}
	}()
	return job(s.ctx)
}

func (s *Scheduler) sweepStats(ctx context.Context) error {
	refreshed, err := s.stats.SweepActive(ctx)
	if err != nil {
		return err
	}
	s.log.Info("stats sweep run", "refreshed", refreshed)
	return nil
}

func (s *Scheduler) cleanupSessions(ctx context.Context) error {
	cutoff := time.Now().Add(-s.cfg.SessionMaxAge)
	sealed, err := s.sessions.SealStale(ctx, cutoff)
	if err != nil {
		return err
	}
	if sealed > 0 {
		s.log.Info("stale sessions sealed", "count", sealed)
	}
	return nil
}

func (s *Scheduler) snapshotLeaderboard(ctx context.Context) error {
	_, err := s.board.Snapshot(ctx)
	return err
}
