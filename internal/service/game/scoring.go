package game

import (
	"github.com/flagwars/backend/internal/config"
	"github.com/flagwars/backend/internal/domain"
)

// ScoringPolicy computes a session's final score at completion time. The
// policy is keyed by game mode; quiz mode always scores by correct answers,
// endless mode is configurable.
type ScoringPolicy interface {
	FinalScore(session *domain.GameSession) int
}

// CorrectCountPolicy scores a session by its running correct-answer count.
type CorrectCountPolicy struct{}

func (CorrectCountPolicy) FinalScore(session *domain.GameSession) int {
	return session.Score
}

// TimedBonusPolicy scores an endless session by cards viewed plus a time
// bonus that decays to zero at the configured ceiling: faster runs through
// the same number of flags score higher.
type TimedBonusPolicy struct {
	BonusCeiling int
}

func (p TimedBonusPolicy) FinalScore(session *domain.GameSession) int {
	bonus := p.BonusCeiling - session.TimeElapsedSeconds
	if bonus < 0 {
		bonus = 0
	}
	return len(session.Viewed) + bonus
}

func scoringPolicies(cfg config.GameConfig) map[domain.GameMode]ScoringPolicy {
	policies := map[domain.GameMode]ScoringPolicy{
		domain.GameModeQuiz:    CorrectCountPolicy{},
		domain.GameModeEndless: CorrectCountPolicy{},
	}
	if cfg.EndlessScoring == config.ScoringTimedBonus {
		policies[domain.GameModeEndless] = TimedBonusPolicy{BonusCeiling: cfg.TimeBonusCeiling}
	}
	return policies
}
