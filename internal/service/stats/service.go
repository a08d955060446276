// Package stats aggregates per-user gameplay statistics from completed
// session history. Aggregates are derived data: every refresh recomputes from
// source truth and writes through a short-lived cache, so at-least-once
// background execution is safe.
package stats

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

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type sessionRepo interface {
	ListCompleted(ctx context.Context, userID uuid.UUID) ([]*domain.GameSession, error)
	ActiveUserIDsSince(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

// statsCache is the time-boxed per-user aggregate store.
type statsCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)
	Set(ctx context.Context, stats *domain.UserStats) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the statistics aggregation business logic.
type Service struct {
	sessions sessionRepo
	cache    statsCache
	log      *slog.Logger
	cfg      config.StatsConfig
	now      func() time.Time
}

// NewService creates a new statistics service.
func NewService(log *slog.Logger, sessions sessionRepo, cache statsCache, cfg config.StatsConfig) *Service {
	return &Service{
		sessions: sessions,
		cache:    cache,
		log:      log.With("service", "stats"),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Recompute scans the user's completed sessions and rebuilds the aggregate,
// writing it through the cache. A cache write failure is logged but does not
// fail the recomputation: the aggregate is still returned and the next read
// will recompute again.
func (s *Service) Recompute(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	sessions, err := s.sessions.ListCompleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}

	stats := aggregate(userID, sessions, s.now())

	if err := s.cache.Set(ctx, stats); err != nil {
		s.log.WarnContext(ctx, "stats cache write failed", "error", err, "user_id", userID)
	}

	s.log.InfoContext(ctx, "stats recomputed",
		"user_id", userID,
		"total_games", stats.TotalGames,
	)
	return stats, nil
}

// Get serves the user's aggregate from cache, recomputing on a miss. An
// unreachable cache falls back to recomputation as well: stale reads are
// acceptable, failing the request is not.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	cached, err := s.cache.Get(ctx, userID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrUnavailable) {
		return nil, fmt.Errorf("read stats cache: %w", err)
	}

	return s.Recompute(ctx, userID)
}

// SweepActive recomputes statistics for every user with session activity in
// the configured window. Recomputation is idempotent, so overlapping or
// double-run sweeps are harmless. Returns the number of users refreshed.
func (s *Service) SweepActive(ctx context.Context) (int, error) {
	since := s.now().Add(-s.cfg.SweepWindow)

	userIDs, err := s.sessions.ActiveUserIDsSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("list active users: %w", err)
	}

	refreshed := 0
	for _, userID := range userIDs {
		if _, err := s.Recompute(ctx, userID); err != nil {
			// One user's failure must not abort the sweep.
			s.log.ErrorContext(ctx, "sweep recompute failed", "error", err, "user_id", userID)
			continue
		}
		refreshed++
	}

	s.log.InfoContext(ctx, "stats sweep finished", "users", len(userIDs), "refreshed", refreshed)
	return refreshed, nil
}

// aggregate folds completed sessions into one UserStats record.
func aggregate(userID uuid.UUID, sessions []*domain.GameSession, now time.Time) *domain.UserStats {
	stats := &domain.UserStats{
		UserID:     userID,
		ComputedAt: now,
	}

	for _, session := range sessions {
		stats.TotalGames++
		stats.TotalScore += session.Score
		if session.Score > stats.BestScore {
			stats.BestScore = session.Score
		}
		stats.TotalCardsViewed += cardsViewed(session)
	}

	if stats.TotalGames > 0 {
		stats.AvgScore = float64(stats.TotalScore) / float64(stats.TotalGames)
	}
	if stats.TotalCardsViewed > 0 {
		stats.Accuracy = float64(stats.TotalScore) / float64(stats.TotalCardsViewed) * 100
	}
	return stats
}

// cardsViewed is the per-session exposure count: the viewed set in endless
// mode, the fixed question count in quiz mode.
func cardsViewed(session *domain.GameSession) int {
	if session.Mode == domain.GameModeEndless {
		return len(session.Viewed)
	}
	return session.TotalQuestions
}
