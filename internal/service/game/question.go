package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flagwars/backend/internal/domain"
)

// NextQuestion resolves the caller's active session and returns the flag to
// identify. Quiz mode returns the card at the cursor without advancing it;
// the cursor only moves on answers. Endless mode re-returns an existing
// pending card idempotently (client retries cause no state change) and
// otherwise draws a fresh card outside the viewed set. When the viewed set
// covers the whole catalog, the session is sealed and a pool-exhausted
// result is returned instead of a question.
func (s *Service) NextQuestion(ctx context.Context, userID uuid.UUID) (*NextQuestionResult, error) {
	return retryOnConflict(func() (*NextQuestionResult, error) {
		session, err := s.sessions.GetActive(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("get active session: %w", err)
		}

		switch session.Mode {
		case domain.GameModeQuiz:
			return s.quizQuestion(ctx, session)
		default:
			return s.endlessQuestion(ctx, session)
		}
	})
}

func (s *Service) quizQuestion(ctx context.Context, session *domain.GameSession) (*NextQuestionResult, error) {
	if session.QuizExhausted() {
		return nil, domain.NewStateError("session exhausted")
	}

	country, err := s.countries.GetByID(ctx, session.Questions[session.CurrentQuestion])
	if err != nil {
		return nil, fmt.Errorf("get question country: %w", err)
	}

	return &NextQuestionResult{
		Question: &Question{
			CountryID: country.ID,
			Code:      country.Code,
			FlagEmoji: country.FlagEmoji,
			FlagImage: country.FlagImage,
			Number:    session.CurrentQuestion + 1,
			Total:     session.TotalQuestions,
		},
	}, nil
}

func (s *Service) endlessQuestion(ctx context.Context, session *domain.GameSession) (*NextQuestionResult, error) {
	// Pending card already drawn: re-return it without touching state.
	if session.PendingCountryID != nil {
		country, err := s.countries.GetByID(ctx, *session.PendingCountryID)
		if err != nil {
			return nil, fmt.Errorf("get pending country: %w", err)
		}
		return &NextQuestionResult{Question: questionFor(country)}, nil
	}

	total, err := s.countries.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count countries: %w", err)
	}

	// Every flag shown: seal the session instead of drawing.
	if len(session.Viewed) >= total {
		s.seal(session, nil)
		sealed, err := s.sessions.Update(ctx, session)
		if err != nil {
			return nil, err
		}
		s.dispatchCompletion(sealed)
		s.log.InfoContext(ctx, "endless pool exhausted, session sealed",
			"user_id", sealed.UserID,
			"session_id", sealed.ID,
			"score", sealed.Score,
		)
		return &NextQuestionResult{PoolExhausted: true, Session: sealed}, nil
	}

	country, err := s.countries.RandomExcluding(ctx, session.Viewed)
	if err != nil {
		return nil, fmt.Errorf("draw country: %w", err)
	}

	session.PendingCountryID = &country.ID
	if _, err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	return &NextQuestionResult{Question: questionFor(country)}, nil
}

// RevealAnswer discloses the pending card's canonical name and aliases.
// Flashcard-style review only makes sense in endless mode, where a card is
// pending until answered or skipped.
func (s *Service) RevealAnswer(ctx context.Context, userID uuid.UUID) (*RevealResult, error) {
	session, err := s.sessions.GetActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	if session.Mode != domain.GameModeEndless {
		return nil, domain.NewStateError("reveal is only available in endless mode")
	}
	if session.PendingCountryID == nil {
		return nil, domain.NewStateError("no pending question")
	}

	country, err := s.countries.GetByID(ctx, *session.PendingCountryID)
	if err != nil {
		return nil, fmt.Errorf("get pending country: %w", err)
	}

	return &RevealResult{
		CountryID: country.ID,
		Name:      country.Name,
		Aliases:   country.Aliases,
	}, nil
}

// Skip consumes one unit of the endless-mode skip budget: the pending card is
// recorded as viewed and cleared so the next fetch draws fresh.
func (s *Service) Skip(ctx context.Context, userID uuid.UUID) (*domain.GameSession, error) {
	updated, err := retryOnConflict(func() (*domain.GameSession, error) {
		session, err := s.sessions.GetActive(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("get active session: %w", err)
		}
		if session.Mode != domain.GameModeEndless {
			return nil, domain.NewStateError("skip is only available in endless mode")
		}
		if session.PendingCountryID == nil {
			return nil, domain.NewStateError("no pending question")
		}
		if session.SkipsRemaining <= 0 {
			return nil, domain.NewStateError("skip budget exhausted")
		}

		session.MarkViewed(*session.PendingCountryID)
		session.PendingCountryID = nil
		session.SkipsRemaining--
		session.SkipsUsed++

		return s.sessions.Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "question skipped",
		"user_id", userID,
		"session_id", updated.ID,
		"skips_remaining", updated.SkipsRemaining,
	)
	return updated, nil
}

func questionFor(country *domain.Country) *Question {
	return &Question{
		CountryID: country.ID,
		Code:      country.Code,
		FlagEmoji: country.FlagEmoji,
		FlagImage: country.FlagImage,
	}
}
