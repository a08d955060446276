package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flagwars/backend/internal/config"
	"github.com/flagwars/backend/internal/domain"
)

type statsSweeperMock struct {
	SweepActiveFunc func(ctx context.Context) (int, error)
}

func (m *statsSweeperMock) SweepActive(ctx context.Context) (int, error) {
	return m.SweepActiveFunc(ctx)
}

type sessionSealerMock struct {
	SealStaleFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *sessionSealerMock) SealStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.SealStaleFunc(ctx, cutoff)
}

type snapshotterMock struct {
	SnapshotFunc func(ctx context.Context) (*domain.LeaderboardSnapshot, error)
}

func (m *snapshotterMock) Snapshot(ctx context.Context) (*domain.LeaderboardSnapshot, error) {
	return m.SnapshotFunc(ctx)
}

func TestScheduler_RunsAllJobs(t *testing.T) {
	t.Parallel()

	sweeps := make(chan struct{}, 16)
	seals := make(chan struct{}, 16)
	snaps := make(chan struct{}, 16)

	var sealCutoff atomic.Value
	sched := NewScheduler(
		slog.Default(),
		&statsSweeperMock{SweepActiveFunc: func(ctx context.Context) (int, error) {
			sweeps <- struct{}{}
			return 1, nil
		}},
		&sessionSealerMock{SealStaleFunc: func(ctx context.Context, cutoff time.Time) (int64, error) {
			sealCutoff.Store(cutoff)
			seals <- struct{}{}
			return 2, nil
		}},
		&snapshotterMock{SnapshotFunc: func(ctx context.Context) (*domain.LeaderboardSnapshot, error) {
			snaps <- struct{}{}
			return &domain.LeaderboardSnapshot{}, nil
		}},
		config.WorkerConfig{
			SweepInterval:    5 * time.Millisecond,
			CleanupInterval:  5 * time.Millisecond,
			SnapshotInterval: 5 * time.Millisecond,
			SessionMaxAge:    24 * time.Hour,
		},
	)
	sched.Start()
	t.Cleanup(sched.Stop)

	for name, ch := range map[string]chan struct{}{
		"sweep":    sweeps,
		"cleanup":  seals,
		"snapshot": snaps,
	} {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatalf("%s job never ran", name)
		}
	}

	cutoff, ok := sealCutoff.Load().(time.Time)
	if !ok {
		t.Fatal("cleanup cutoff not recorded")
	}
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), cutoff, time.Minute)
}

func TestScheduler_JobPanicDoesNotStopTicker(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	second := make(chan struct{})

	sched := NewScheduler(
		slog.Default(),
		&statsSweeperMock{SweepActiveFunc: func(ctx context.Context) (int, error) {
			if runs.Add(1) == 2 {
				close(second)
			}
			panic("boom")
		}},
		&sessionSealerMock{SealStaleFunc: func(ctx context.Context, cutoff time.Time) (int64, error) {
			return 0, nil
		}},
		&snapshotterMock{SnapshotFunc: func(ctx context.Context) (*domain.LeaderboardSnapshot, error) {
			return nil, nil
		}},
		config.WorkerConfig{
			SweepInterval:    5 * time.Millisecond,
			CleanupInterval:  time.Hour,
			SnapshotInterval: time.Hour,
			SessionMaxAge:    24 * time.Hour,
		},
	)
	sched.Start()
	t.Cleanup(sched.Stop)

	select {
	case <-second:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep ticker died after a panic")
	}
}

func TestScheduler_ZeroIntervalDisablesJob(t *testing.T) {
	t.Parallel()

	ran := make(chan struct{}, 1)
	sched := NewScheduler(
		slog.Default(),
		&statsSweeperMock{SweepActiveFunc: func(ctx context.Context) (int, error) {
			ran <- struct{}{}
			return 0, nil
		}},
		&sessionSealerMock{SealStaleFunc: func(ctx context.Context, cutoff time.Time) (int64, error) {
			return 0, nil
		}},
		&snapshotterMock{SnapshotFunc: func(ctx context.Context) (*domain.LeaderboardSnapshot, error) {
			return nil, nil
		}},
		config.WorkerConfig{
			SweepInterval:    0,
			CleanupInterval:  time.Hour,
			SnapshotInterval: time.Hour,
		},
	)
	sched.Start()
	t.Cleanup(sched.Stop)

	select {
	case <-ran:
		t.Fatal("disabled job ran")
	case <-time.After(50 * time.Millisecond):
	}
}
