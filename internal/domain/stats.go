package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserStats aggregates a user's completed sessions. Derived data: recomputed
// from session history on every refresh, cached with a short expiry.
type UserStats struct {
	UserID           uuid.UUID
	TotalGames       int
	AvgScore         float64
	BestScore        int
	TotalScore       int
	TotalCardsViewed int

	// Accuracy is TotalScore / TotalCardsViewed as a percentage; 0 when the
	// user has viewed no cards.
	Accuracy float64

	ComputedAt time.Time
}
