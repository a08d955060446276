package leitner

import (
	"time"

	"github.com/flagwars/backend/internal/domain"
)

// NextBox is a pure function: the box a card moves to after one review.
// Correct moves the card up one box, capped at the top box; incorrect resets
// it to box 1 regardless of prior box, with no partial credit.
func NextBox(box int, correct bool) int {
	if !correct {
		return domain.MinBox
	}
	if box < domain.MinBox {
		box = domain.MinBox
	}
	next := box + 1
	if next > domain.MaxBox {
		next = domain.MaxBox
	}
	return next
}

// ScheduleAfter returns the next review time for a card sitting in the given
// box, reviewed at the given moment.
func ScheduleAfter(box int, reviewedAt time.Time) time.Time {
	return reviewedAt.Add(domain.BoxInterval(box))
}
