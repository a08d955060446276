package leitner

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flagwars/backend/internal/domain"
)

// GetDue returns the user's cards whose next review time has passed, oldest
// first, capped by the requested limit (or the configured default).
func (s *Service) GetDue(ctx context.Context, userID uuid.UUID, input GetDueInput) ([]*domain.ReviewProgress, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = s.cfg.DueLimit
	}

	due, err := s.progress.ListDue(ctx, userID, s.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("list due: %w", err)
	}
	return due, nil
}

// GetStats assembles the user's learning overview: total catalog size, cards
// in progress, cards currently due, per-box distribution and the all-time
// review accuracy. Accuracy over zero reviews is reported as 0, not NaN.
func (s *Service) GetStats(ctx context.Context, userID uuid.UUID) (*domain.LearningStats, error) {
	total, err := s.countries.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count countries: %w", err)
	}

	inProgress, err := s.progress.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count cards: %w", err)
	}

	dueCount, err := s.progress.CountDue(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("count due: %w", err)
	}

	boxCounts, err := s.progress.CountByBox(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count by box: %w", err)
	}

	correct, reviews, err := s.progress.ReviewTotals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("review totals: %w", err)
	}

	var accuracy float64
	if reviews > 0 {
		accuracy = float64(correct) / float64(reviews) * 100
	}

	return &domain.LearningStats{
		TotalCards: total,
		InProgress: inProgress,
		DueCount:   dueCount,
		BoxCounts:  boxCounts,
		Accuracy:   accuracy,
	}, nil
}
