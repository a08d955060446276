package config

import (
	"fmt"
)

// Scoring policy names accepted by game.endless_scoring.
const (
	ScoringCorrectCount = "correct_count"
	ScoringTimedBonus   = "timed_bonus"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Game.validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if err := c.Leitner.validate(); err != nil {
		return fmt.Errorf("leitner: %w", err)
	}
	if err := c.Worker.validate(); err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	return nil
}

func (g *GameConfig) validate() error {
	if g.QuizLength <= 0 {
		return fmt.Errorf("quiz_length must be > 0 (got %d)", g.QuizLength)
	}
	if g.SkipBudget < 0 {
		return fmt.Errorf("skip_budget must be >= 0 (got %d)", g.SkipBudget)
	}
	switch g.EndlessScoring {
	case ScoringCorrectCount, ScoringTimedBonus:
	default:
		return fmt.Errorf("endless_scoring must be %q or %q (got %q)",
			ScoringCorrectCount, ScoringTimedBonus, g.EndlessScoring)
	}
	if g.TimeBonusCeiling < 0 {
		return fmt.Errorf("time_bonus_ceiling must be >= 0 (got %d)", g.TimeBonusCeiling)
	}
	return nil
}

func (l *LeitnerConfig) validate() error {
	if l.DueLimit <= 0 {
		return fmt.Errorf("due_limit must be > 0 (got %d)", l.DueLimit)
	}
	if l.NewCardsPerCall <= 0 {
		return fmt.Errorf("new_cards_per_call must be > 0 (got %d)", l.NewCardsPerCall)
	}
	return nil
}

func (w *WorkerConfig) validate() error {
	if w.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be > 0 (got %d)", w.Concurrency)
	}
	if w.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be > 0 (got %d)", w.QueueSize)
	}
	if w.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0 (got %d)", w.MaxRetries)
	}
	return nil
}
