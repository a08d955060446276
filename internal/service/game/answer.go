package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flagwars/backend/internal/domain"
)

// SubmitAnswer checks the player's answer against the current question.
//
// Quiz mode gives one attempt per question: the cursor advances whether the
// answer was right or wrong, and the session auto-completes when the last
// question is answered. Endless mode is retry-until-correct-or-skip: a wrong
// answer leaves the pending card in place.
//
// A submission that loses the optimistic-lock race surfaces ErrConflict
// rather than being re-applied to the winner's state, which would answer a
// question the player did not see. The client re-fetches and resubmits.
func (s *Service) SubmitAnswer(ctx context.Context, userID uuid.UUID, input SubmitAnswerInput) (*AnswerResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	normalized := domain.NormalizeAnswer(input.Answer)

	session, err := s.sessions.GetActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}

	var result *AnswerResult
	switch session.Mode {
	case domain.GameModeQuiz:
		result, err = s.answerQuiz(ctx, session, normalized)
	default:
		result, err = s.answerEndless(ctx, session, normalized)
	}
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "answer submitted",
		"user_id", userID,
		"correct", result.IsCorrect,
		"score", result.Score,
	)
	return result, nil
}

func (s *Service) answerQuiz(ctx context.Context, session *domain.GameSession, normalized string) (*AnswerResult, error) {
	if session.QuizExhausted() {
		return nil, domain.NewStateError("session exhausted")
	}

	country, err := s.countries.GetByID(ctx, session.Questions[session.CurrentQuestion])
	if err != nil {
		return nil, fmt.Errorf("get question country: %w", err)
	}

	correct := matchesExact(country, normalized)
	if correct {
		session.Score++
	}
	session.CurrentQuestion++
	if session.QuizExhausted() {
		s.seal(session, nil)
	}

	updated, err := s.sessions.Update(ctx, session)
	if err != nil {
		return nil, err
	}
	if updated.IsCompleted {
		s.dispatchCompletion(updated)
	}

	return &AnswerResult{
		IsCorrect:        correct,
		CorrectName:      country.Name,
		Score:            updated.Score,
		SessionCompleted: updated.IsCompleted,
	}, nil
}

func (s *Service) answerEndless(ctx context.Context, session *domain.GameSession, normalized string) (*AnswerResult, error) {
	if session.PendingCountryID == nil {
		return nil, domain.NewStateError("no pending question")
	}

	country, err := s.countries.GetByID(ctx, *session.PendingCountryID)
	if err != nil {
		return nil, fmt.Errorf("get pending country: %w", err)
	}

	correct := matchesExact(country, normalized) || matchesFuzzy(country, normalized)
	if !correct {
		// Pending card stays: the player may retry or skip.
		return &AnswerResult{
			IsCorrect:   false,
			CorrectName: country.Name,
			Score:       session.Score,
		}, nil
	}

	session.Score++
	session.MarkViewed(country.ID)
	session.PendingCountryID = nil

	updated, err := s.sessions.Update(ctx, session)
	if err != nil {
		return nil, err
	}

	return &AnswerResult{
		IsCorrect:   true,
		CorrectName: country.Name,
		Score:       updated.Score,
	}, nil
}

// matchesExact reports whether the normalized answer equals the canonical
// name or any alias.
func matchesExact(country *domain.Country, normalized string) bool {
	for _, accepted := range country.AcceptedAnswers() {
		if normalized == accepted {
			return true
		}
	}
	return false
}

// matchesFuzzy applies the endless-mode secondary rule: an answer of at least
// four characters matches the part of the canonical name before the first
// comma, so "taiwan" is accepted for "Taiwan, Province of China". The length
// floor keeps trivially short answers from matching truncated names.
func matchesFuzzy(country *domain.Country, normalized string) bool {
	if len([]rune(normalized)) < 4 {
		return false
	}
	return normalized == domain.FirstNameSegment(country.Name)
}
