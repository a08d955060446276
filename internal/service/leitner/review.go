package leitner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/flagwars/backend/internal/domain"
)

// GetOrCreate returns the review record for (user, country), materializing a
// fresh box-1 card due immediately when the user has never seen the country.
// Unknown countries are rejected with ErrNotFound rather than silently
// creating an orphan record.
func (s *Service) GetOrCreate(ctx context.Context, userID, countryID uuid.UUID) (*domain.ReviewProgress, error) {
	if countryID == uuid.Nil {
		return nil, domain.NewValidationError("country_id", "required")
	}
	if _, err := s.countries.GetByID(ctx, countryID); err != nil {
		return nil, fmt.Errorf("check country: %w", err)
	}

	progress, err := s.progress.GetByCountry(ctx, userID, countryID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	now := s.now()
	created, err := s.progress.Create(ctx, &domain.ReviewProgress{
		ID:           uuid.New(),
		UserID:       userID,
		CountryID:    countryID,
		Box:          domain.MinBox,
		NextReviewAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Lost a create race with a concurrent request; the winner's record
		// is the one we want.
		if errors.Is(err, domain.ErrAlreadyExists) {
			return s.progress.GetByCountry(ctx, userID, countryID)
		}
		return nil, fmt.Errorf("create progress: %w", err)
	}

	s.log.InfoContext(ctx, "review card created",
		"user_id", userID,
		"country_id", countryID,
	)
	return created, nil
}

// ProcessReview applies one review outcome to the card for (user, country):
// counters are incremented, the box moves per the Leitner rule and the next
// review is scheduled from the new box's interval. Losing a concurrent-update
// race surfaces ErrConflict rather than re-counting the outcome against the
// winner's state, which would record one review twice.
func (s *Service) ProcessReview(ctx context.Context, userID uuid.UUID, input ReviewInput) (*domain.ReviewProgress, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	progress, err := s.GetOrCreate(ctx, userID, input.CountryID)
	if err != nil {
		return nil, err
	}

	updated, err := s.applyReview(ctx, progress, input.IsCorrect)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "review processed",
		"user_id", userID,
		"country_id", input.CountryID,
		"correct", input.IsCorrect,
		"box", updated.Box,
	)
	return updated, nil
}

func (s *Service) applyReview(ctx context.Context, progress *domain.ReviewProgress, correct bool) (*domain.ReviewProgress, error) {
	now := s.now()

	next := *progress
	next.TotalReviews++
	if correct {
		next.CorrectReviews++
	}
	next.Box = NextBox(progress.Box, correct)
	next.NextReviewAt = ScheduleAfter(next.Box, now)
	next.LastReviewedAt = &now
	next.UpdatedAt = now

	updated, err := s.progress.Update(ctx, &next)
	if err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}
	return updated, nil
}

// AddNewCards materializes box-1 records for countries the user has no card
// for yet, up to the configured batch size. Returns the cards created.
func (s *Service) AddNewCards(ctx context.Context, userID uuid.UUID, input AddNewCardsInput) ([]*domain.ReviewProgress, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = s.cfg.NewCardsPerCall
	}

	countryIDs, err := s.progress.MissingCountryIDs(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list missing countries: %w", err)
	}

	now := s.now()
	created := make([]*domain.ReviewProgress, 0, len(countryIDs))
	for _, countryID := range countryIDs {
		card, err := s.progress.Create(ctx, &domain.ReviewProgress{
			ID:           uuid.New(),
			UserID:       userID,
			CountryID:    countryID,
			Box:          domain.MinBox,
			NextReviewAt: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				continue
			}
			return nil, fmt.Errorf("create card for country %s: %w", countryID, err)
		}
		created = append(created, card)
	}

	s.log.InfoContext(ctx, "new cards added", "user_id", userID, "count", len(created))
	return created, nil
}
