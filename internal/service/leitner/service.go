// Package leitner implements the spaced-repetition scheduler: per-(user,
// country) review state moving through five Leitner boxes. Correct answers
// promote a card one box and lengthen the review gap; a single miss resets it
// to box 1.
package leitner

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flagwars/backend/internal/config"
	"github.com/flagwars/backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type progressRepo interface {
	GetByCountry(ctx context.Context, userID, countryID uuid.UUID) (*domain.ReviewProgress, error)
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.ReviewProgress, error)
	CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
	CountByBox(ctx context.Context, userID uuid.UUID) (domain.BoxCounts, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	ReviewTotals(ctx context.Context, userID uuid.UUID) (correct, total int, err error)
	MissingCountryIDs(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error)
	Create(ctx context.Context, progress *domain.ReviewProgress) (*domain.ReviewProgress, error)
	Update(ctx context.Context, progress *domain.ReviewProgress) (*domain.ReviewProgress, error)
}

type countryRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Country, error)
	Count(ctx context.Context) (int, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the Leitner scheduling business logic.
type Service struct {
	progress  progressRepo
	countries countryRepo
	log       *slog.Logger
	cfg       config.LeitnerConfig
	now       func() time.Time
}

// NewService creates a new Leitner scheduler service.
func NewService(
	log *slog.Logger,
	progress progressRepo,
	countries countryRepo,
	cfg config.LeitnerConfig,
) *Service {
	return &Service{
		progress:  progress,
		countries: countries,
		log:       log.With("service", "leitner"),
		cfg:       cfg,
		now:       time.Now,
	}
}
