package domain

import (
	"time"

	"github.com/google/uuid"
)

// GameMode selects the session variant.
type GameMode string

const (
	// GameModeQuiz is a fixed-length session with questions drawn at creation.
	GameModeQuiz GameMode = "QUIZ"
	// GameModeEndless draws unique random flags until the pool is exhausted
	// or the player quits. Skipping is allowed within a budget.
	GameModeEndless GameMode = "ENDLESS"
)

func (m GameMode) String() string { return string(m) }

func (m GameMode) IsValid() bool {
	switch m {
	case GameModeQuiz, GameModeEndless:
		return true
	}
	return false
}

// GameSession is one play-through owned by a single user. Completed sessions
// are immutable history; only the active session is ever mutated.
type GameSession struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Mode   GameMode

	// Quiz mode: country IDs fixed at creation, answered in order.
	Questions       []uuid.UUID
	CurrentQuestion int
	TotalQuestions  int

	// Endless mode: every country already shown, in insertion order, plus the
	// single card currently awaiting an answer.
	Viewed           []uuid.UUID
	PendingCountryID *uuid.UUID
	SkipsRemaining   int
	SkipsUsed        int

	Score              int
	StartedAt          time.Time
	CompletedAt        *time.Time
	TimeElapsedSeconds int
	IsCompleted        bool

	// Version guards concurrent writes: updates are compare-and-swap on it.
	Version   int
	CreatedAt time.Time
}

// HasViewed reports whether the country was already shown in this session.
func (s *GameSession) HasViewed(countryID uuid.UUID) bool {
	for _, id := range s.Viewed {
		if id == countryID {
			return true
		}
	}
	return false
}

// MarkViewed appends the country to the viewed set exactly once.
func (s *GameSession) MarkViewed(countryID uuid.UUID) {
	if !s.HasViewed(countryID) {
		s.Viewed = append(s.Viewed, countryID)
	}
}

// QuizExhausted reports whether every fixed question has been answered.
func (s *GameSession) QuizExhausted() bool {
	return s.Mode == GameModeQuiz && s.CurrentQuestion >= s.TotalQuestions
}

// Complete seals the session at the given time. Elapsed time is the
// server-side wall clock unless the caller already fixed it.
func (s *GameSession) Complete(now time.Time) {
	if s.IsCompleted {
		return
	}
	s.IsCompleted = true
	s.CompletedAt = &now
	if s.TimeElapsedSeconds == 0 {
		s.TimeElapsedSeconds = int(now.Sub(s.StartedAt).Seconds())
	}
}

// SessionFilter defines parameters for listing a user's session history.
type SessionFilter struct {
	// Mode restricts the listing to one game mode. nil means both.
	Mode *GameMode

	// Completed filters by lifecycle state. nil means both.
	Completed *bool

	// Limit is the maximum number of sessions to return. Default: 50, max: 200.
	Limit int

	// Offset is the number of sessions to skip.
	Offset int
}
