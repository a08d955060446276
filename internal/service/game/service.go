// Package game implements the session engine: one active session per user,
// two modes (fixed-length quiz and endless flashcard-with-skips), answer
// matching and scoring, completion handling, and the fire-and-forget handoff
// to the leaderboard and statistics pipelines.
package game

import (
	"context"
	"errors"
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
	GetActive(ctx context.Context, userID uuid.UUID) (*domain.GameSession, error)
	List(ctx context.Context, userID uuid.UUID, filter domain.SessionFilter) ([]*domain.GameSession, int, error)
	Create(ctx context.Context, session *domain.GameSession) (*domain.GameSession, error)
	Update(ctx context.Context, session *domain.GameSession) (*domain.GameSession, error)
}

type countryRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Country, error)
	Count(ctx context.Context) (int, error)
	RandomSample(ctx context.Context, n int) ([]domain.Country, error)
	RandomExcluding(ctx context.Context, excluded []uuid.UUID) (*domain.Country, error)
}

// scorePublisher pushes a finished session's score into the leaderboard.
type scorePublisher interface {
	Upsert(ctx context.Context, userID uuid.UUID, score int) error
}

// statsRecomputer refreshes a user's aggregate statistics from source truth.
type statsRecomputer interface {
	Recompute(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)
}

// dispatcher hands a named task to the background worker. The call returns
// immediately; execution, retry and failure logging happen out of band.
type dispatcher interface {
	Dispatch(name string, fn func(ctx context.Context) error)
}

// txManager runs fn inside a single database transaction so that multi-row
// writes commit or roll back together.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the game session business logic.
type Service struct {
	sessions  sessionRepo
	countries countryRepo
	scores    scorePublisher
	stats     statsRecomputer
	tasks     dispatcher
	tx        txManager
	log       *slog.Logger
	cfg       config.GameConfig
	scoring   map[domain.GameMode]ScoringPolicy
	now       func() time.Time
}

// NewService creates a new game session service.
func NewService(
	log *slog.Logger,
	sessions sessionRepo,
	countries countryRepo,
	scores scorePublisher,
	stats statsRecomputer,
	tasks dispatcher,
	tx txManager,
	cfg config.GameConfig,
) *Service {
	return &Service{
		sessions:  sessions,
		countries: countries,
		scores:    scores,
		stats:     stats,
		tasks:     tasks,
		tx:        tx,
		log:       log.With("service", "game"),
		cfg:       cfg,
		scoring:   scoringPolicies(cfg),
		now:       time.Now,
	}
}

// retryOnConflict runs op, retrying once when a concurrent writer invalidated
// the session's optimistic lock. op must re-read state on each call so the
// retry operates on the winner's version. Only operations whose intent is
// unchanged by the winner's write belong here; answer submissions surface
// ErrConflict instead so a lost race never answers a question the player
// did not see.
func retryOnConflict[T any](op func() (T, error)) (T, error) {
	result, err := op()
	if errors.Is(err, domain.ErrConflict) {
		result, err = op()
	}
	return result, err
}

// dispatchCompletion enqueues the post-completion pipeline: score to the
// leaderboard, statistics recomputation. Fire-and-forget; gameplay never
// waits on either.
func (s *Service) dispatchCompletion(session *domain.GameSession) {
	userID := session.UserID
	score := session.Score

	s.tasks.Dispatch("leaderboard:upsert", func(ctx context.Context) error {
		return s.scores.Upsert(ctx, userID, score)
	})
	s.tasks.Dispatch("stats:recompute", func(ctx context.Context) error {
		_, err := s.stats.Recompute(ctx, userID)
		return err
	})
}
