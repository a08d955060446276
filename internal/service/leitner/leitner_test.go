package leitner

import (
	"testing"
	"time"

	"github.com/flagwars/backend/internal/domain"
)

func TestNextBox(t *testing.T) {
	tests := []struct {
		name    string
		box     int
		correct bool
		want    int
	}{
		// Promotions
		{"box 1 correct → 2", 1, true, 2},
		{"box 2 correct → 3", 2, true, 3},
		{"box 3 correct → 4", 3, true, 4},
		{"box 4 correct → 5", 4, true, 5},
		{"box 5 correct stays at 5", 5, true, 5},

		// Any miss resets to box 1
		{"box 1 incorrect stays at 1", 1, false, 1},
		{"box 2 incorrect → 1", 2, false, 1},
		{"box 3 incorrect → 1", 3, false, 1},
		{"box 5 incorrect → 1", 5, false, 1},

		// Out-of-range input is clamped before moving
		{"box 0 correct → 2", 0, true, 2},
		{"box 9 correct → 5", 9, true, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextBox(tt.box, tt.correct)
			if got != tt.want {
				t.Errorf("NextBox(%d, %v) = %d, want %d", tt.box, tt.correct, got, tt.want)
			}
		})
	}
}

func TestNextBox_ClimbAndReset(t *testing.T) {
	// A card climbing to box 4 over three correct reviews, then missing,
	// starts over from box 1 with the box-1 interval.
	box := 1
	for i := 0; i < 3; i++ {
		box = NextBox(box, true)
	}
	if box != 4 {
		t.Fatalf("after 3 correct reviews box = %d, want 4", box)
	}

	box = NextBox(box, false)
	if box != domain.MinBox {
		t.Fatalf("after miss box = %d, want %d", box, domain.MinBox)
	}

	reviewedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	next := ScheduleAfter(box, reviewedAt)
	if want := reviewedAt.Add(24 * time.Hour); !next.Equal(want) {
		t.Errorf("next review = %v, want %v", next, want)
	}
}

func TestScheduleAfter_Intervals(t *testing.T) {
	reviewedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		box  int
		days int
	}{
		{1, 1},
		{2, 3},
		{3, 7},
		{4, 14},
		{5, 30},
		// Out-of-range boxes clamp to the nearest valid interval.
		{0, 1},
		{6, 30},
	}

	for _, tt := range tests {
		got := ScheduleAfter(tt.box, reviewedAt)
		want := reviewedAt.Add(time.Duration(tt.days) * 24 * time.Hour)
		if !got.Equal(want) {
			t.Errorf("ScheduleAfter(%d) = %v, want %v", tt.box, got, want)
		}
	}
}
