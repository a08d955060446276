package game

import (
	"github.com/google/uuid"

	"github.com/flagwars/backend/internal/domain"
)

// Question is the player-facing payload for one flag to identify. The
// canonical name and aliases are withheld: guessing them is the game.
type Question struct {
	CountryID uuid.UUID
	Code      string
	FlagEmoji string
	FlagImage string

	// Number and Total are the 1-indexed position within a quiz. Zero in
	// endless mode.
	Number int
	Total  int
}

// NextQuestionResult is either a question or the pool-exhaustion signal.
type NextQuestionResult struct {
	Question *Question

	// PoolExhausted reports that every flag in the catalog was already shown;
	// the session has been sealed and Session carries its final state.
	PoolExhausted bool
	Session       *domain.GameSession
}

// AnswerResult is the verdict for one submitted answer.
type AnswerResult struct {
	IsCorrect   bool
	CorrectName string
	Score       int

	// SessionCompleted reports that this answer finished the session.
	SessionCompleted bool
}

// RevealResult discloses the pending card's answer for flashcard-style
// review, where the purpose is exposure rather than testing.
type RevealResult struct {
	CountryID uuid.UUID
	Name      string
	Aliases   []string
}
