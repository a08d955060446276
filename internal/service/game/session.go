package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/flagwars/backend/internal/domain"
)

// Start creates a new session for the user. Any prior active session is
// sealed first: the single-active-session invariant is enforced at creation
// rather than relying on latest-wins lookup, so crashed sessions cannot
// linger as unreachable zombies. The seal and the create share one
// transaction; a failed create leaves the prior session active.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, input StartInput) (*domain.GameSession, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var created, prior *domain.GameSession
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		prior, err = s.sealPriorActive(ctx, userID)
		if err != nil {
			return err
		}

		now := s.now()
		session := &domain.GameSession{
			ID:        uuid.New(),
			UserID:    userID,
			Mode:      input.Mode,
			StartedAt: now,
			CreatedAt: now,
		}

		switch input.Mode {
		case domain.GameModeQuiz:
			total, err := s.countries.Count(ctx)
			if err != nil {
				return fmt.Errorf("count countries: %w", err)
			}
			if total < s.cfg.QuizLength {
				return fmt.Errorf("quiz needs %d flags, catalog has %d: %w",
					s.cfg.QuizLength, total, domain.ErrInsufficientData)
			}

			sample, err := s.countries.RandomSample(ctx, s.cfg.QuizLength)
			if err != nil {
				return fmt.Errorf("sample questions: %w", err)
			}
			if len(sample) < s.cfg.QuizLength {
				return fmt.Errorf("quiz needs %d flags, sampled %d: %w",
					s.cfg.QuizLength, len(sample), domain.ErrInsufficientData)
			}

			session.Questions = make([]uuid.UUID, len(sample))
			for i, country := range sample {
				session.Questions[i] = country.ID
			}
			session.TotalQuestions = s.cfg.QuizLength

		case domain.GameModeEndless:
			session.SkipsRemaining = s.cfg.SkipBudget
		}

		created, err = s.sessions.Create(ctx, session)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if prior != nil {
		s.dispatchCompletion(prior)
		s.log.InfoContext(ctx, "prior active session sealed",
			"user_id", userID,
			"session_id", prior.ID,
		)
	}

	s.log.InfoContext(ctx, "session started",
		"user_id", userID,
		"session_id", created.ID,
		"mode", created.Mode,
	)
	return created, nil
}

// Finish seals the caller's active session, applies the mode's scoring policy
// and hands the result to the leaderboard and statistics pipelines.
func (s *Service) Finish(ctx context.Context, userID uuid.UUID, input FinishInput) (*domain.GameSession, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	sealed, err := retryOnConflict(func() (*domain.GameSession, error) {
		session, err := s.sessions.GetActive(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("get active session: %w", err)
		}
		s.seal(session, input.ElapsedSeconds)
		return s.sessions.Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.dispatchCompletion(sealed)

	s.log.InfoContext(ctx, "session finished",
		"user_id", userID,
		"session_id", sealed.ID,
		"mode", sealed.Mode,
		"score", sealed.Score,
		"elapsed_seconds", sealed.TimeElapsedSeconds,
	)
	return sealed, nil
}

// History lists the user's sessions, newest first, with the total count for
// pagination.
func (s *Service) History(ctx context.Context, userID uuid.UUID, input HistoryInput) ([]*domain.GameSession, int, error) {
	if err := input.Validate(); err != nil {
		return nil, 0, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = 50
	}

	sessions, total, err := s.sessions.List(ctx, userID, domain.SessionFilter{
		Mode:      input.Mode,
		Completed: input.Completed,
		Limit:     limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, total, nil
}

// seal transitions the session to completed and applies the mode's scoring
// policy. The caller-supplied elapsed time, when present, wins over the
// server-side wall clock.
func (s *Service) seal(session *domain.GameSession, externalElapsed *int) {
	if externalElapsed != nil && *externalElapsed > 0 {
		session.TimeElapsedSeconds = *externalElapsed
	}
	session.Complete(s.now())
	session.Score = s.scoring[session.Mode].FinalScore(session)
}

// sealPriorActive completes whatever active session the user still has, if
// any, returning the sealed session or nil. The caller dispatches the
// completion pipeline once the enclosing transaction commits.
func (s *Service) sealPriorActive(ctx context.Context, userID uuid.UUID) (*domain.GameSession, error) {
	sealed, err := retryOnConflict(func() (*domain.GameSession, error) {
		session, err := s.sessions.GetActive(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.seal(session, nil)
		return s.sessions.Update(ctx, session)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("seal prior session: %w", err)
	}
	return sealed, nil
}
