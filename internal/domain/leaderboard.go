package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeaderboardEntry is a derived ranking row produced on demand from the
// ordered score store. Rank is 1-indexed and dense; ties keep the store's
// stable order.
type LeaderboardEntry struct {
	UserID uuid.UUID
	Rank   int
	Score  int
}

// LeaderboardSnapshot is a periodic capture of the top of the leaderboard,
// kept for historical analysis.
type LeaderboardSnapshot struct {
	TakenAt time.Time
	Entries []LeaderboardEntry
}
