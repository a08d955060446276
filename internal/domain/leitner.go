package domain

import (
	"time"

	"github.com/google/uuid"
)

// Leitner box bounds. Box 1 is reviewed most often, box 5 least often.
const (
	MinBox = 1
	MaxBox = 5
)

// boxIntervals maps box number to the delay before the next review.
var boxIntervals = [MaxBox + 1]time.Duration{
	0,
	1 * 24 * time.Hour,  // box 1
	3 * 24 * time.Hour,  // box 2
	7 * 24 * time.Hour,  // box 3
	14 * 24 * time.Hour, // box 4
	30 * 24 * time.Hour, // box 5
}

// BoxInterval returns the review interval for a box. Out-of-range boxes are
// clamped into [MinBox, MaxBox].
func BoxInterval(box int) time.Duration {
	if box < MinBox {
		box = MinBox
	}
	if box > MaxBox {
		box = MaxBox
	}
	return boxIntervals[box]
}

// ReviewProgress is the per-(user, country) Leitner state. Exactly one record
// exists per pair; records are created lazily and never deleted.
type ReviewProgress struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	CountryID      uuid.UUID
	Box            int
	NextReviewAt   time.Time
	TotalReviews   int
	CorrectReviews int
	LastReviewedAt *time.Time

	// Version guards concurrent reviews of the same card: updates are
	// compare-and-swap on it.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDue reports whether the card needs review at the given time.
func (p *ReviewProgress) IsDue(now time.Time) bool {
	return !p.NextReviewAt.After(now)
}

// BoxCounts holds the number of progress records per Leitner box.
// Index 0 corresponds to box 1.
type BoxCounts [MaxBox]int

// LearningStats aggregates a user's Leitner state.
type LearningStats struct {
	TotalCards int // countries in the reference catalog
	InProgress int // progress records materialized for this user
	DueCount   int
	BoxCounts  BoxCounts

	// Accuracy is sum(correct)/sum(total) across all records with at least one
	// review, as a percentage. Weighted by review count, not by card.
	Accuracy float64
}
