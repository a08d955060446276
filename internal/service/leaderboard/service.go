// Package leaderboard maintains the global score ranking. The backing ordered
// store is best-effort: reads degrade to empty results when it is unreachable
// so the leaderboard never blocks gameplay.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flagwars/backend/internal/config"
	"github.com/flagwars/backend/internal/domain"
)

// scoreIndex is the ordered score store: upsert, top-N and rank by score.
type scoreIndex interface {
	Upsert(ctx context.Context, userID uuid.UUID, score int) error
	TopN(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	RankOf(ctx context.Context, userID uuid.UUID) (*domain.LeaderboardEntry, error)
	SaveSnapshot(ctx context.Context, snapshot domain.LeaderboardSnapshot, ttl time.Duration) error
	GetSnapshot(ctx context.Context, date time.Time) (*domain.LeaderboardSnapshot, error)
}

// Service implements the leaderboard business logic.
type Service struct {
	index scoreIndex
	log   *slog.Logger
	cfg   config.LeaderboardConfig
	now   func() time.Time
}

// NewService creates a new leaderboard service.
func NewService(log *slog.Logger, index scoreIndex, cfg config.LeaderboardConfig) *Service {
	return &Service{
		index: index,
		log:   log.With("service", "leaderboard"),
		cfg:   cfg,
		now:   time.Now,
	}
}

// Upsert sets the user's score to the given absolute value. Callers pass
// final scores, not deltas; re-upserting the same value is a no-op in effect.
// Errors propagate so the task runner can retry.
func (s *Service) Upsert(ctx context.Context, userID uuid.UUID, score int) error {
	if err := s.index.Upsert(ctx, userID, score); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

// TopN returns up to limit entries ordered by score descending with 1-indexed
// ranks. An unreachable store yields an empty list, not an error.
func (s *Service) TopN(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 || limit > s.cfg.TopLimit {
		limit = s.cfg.TopLimit
	}

	entries, err := s.index.TopN(ctx, limit)
	if err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			s.log.WarnContext(ctx, "score store unreachable, serving empty leaderboard", "error", err)
			return []domain.LeaderboardEntry{}, nil
		}
		return nil, fmt.Errorf("top n: %w", err)
	}
	return entries, nil
}

// RankOf returns the user's rank and score, nil if the user was never ranked
// or the store is unreachable.
func (s *Service) RankOf(ctx context.Context, userID uuid.UUID) (*domain.LeaderboardEntry, error) {
	entry, err := s.index.RankOf(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		if errors.Is(err, domain.ErrUnavailable) {
			s.log.WarnContext(ctx, "score store unreachable, rank unknown", "error", err, "user_id", userID)
			return nil, nil
		}
		return nil, fmt.Errorf("rank of: %w", err)
	}
	return entry, nil
}

// Snapshot persists the current top of the leaderboard, keyed by date, with
// the configured expiry. Running it twice on the same day overwrites with
// equivalent data, so double-runs are harmless.
func (s *Service) Snapshot(ctx context.Context) (*domain.LeaderboardSnapshot, error) {
	entries, err := s.index.TopN(ctx, s.cfg.SnapshotSize)
	if err != nil {
		return nil, fmt.Errorf("read top for snapshot: %w", err)
	}

	snapshot := domain.LeaderboardSnapshot{
		TakenAt: s.now(),
		Entries: entries,
	}
	if err := s.index.SaveSnapshot(ctx, snapshot, s.cfg.SnapshotTTL); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	s.log.InfoContext(ctx, "leaderboard snapshot saved", "entries", len(entries))
	return &snapshot, nil
}

// SnapshotFor returns the snapshot taken on the given date, if still cached.
func (s *Service) SnapshotFor(ctx context.Context, date time.Time) (*domain.LeaderboardSnapshot, error) {
	snapshot, err := s.index.GetSnapshot(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snapshot, nil
}
