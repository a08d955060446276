package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGameSession_MarkViewed_NoDuplicates(t *testing.T) {
	s := &GameSession{Mode: GameModeEndless}
	id := uuid.New()

	s.MarkViewed(id)
	s.MarkViewed(id)

	if len(s.Viewed) != 1 {
		t.Errorf("viewed = %v, want the card exactly once", s.Viewed)
	}
	if !s.HasViewed(id) {
		t.Error("HasViewed returned false for a viewed card")
	}
	if s.HasViewed(uuid.New()) {
		t.Error("HasViewed returned true for an unseen card")
	}
}

func TestGameSession_Complete(t *testing.T) {
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := started.Add(2 * time.Minute)

	s := &GameSession{StartedAt: started}
	s.Complete(now)

	if !s.IsCompleted {
		t.Fatal("session not completed")
	}
	if s.CompletedAt == nil || !s.CompletedAt.Equal(now) {
		t.Errorf("completed at = %v, want %v", s.CompletedAt, now)
	}
	if s.TimeElapsedSeconds != 120 {
		t.Errorf("elapsed = %d, want 120", s.TimeElapsedSeconds)
	}
}

func TestGameSession_Complete_KeepsExternalElapsed(t *testing.T) {
	s := &GameSession{
		StartedAt:          time.Now().Add(-time.Hour),
		TimeElapsedSeconds: 45,
	}
	s.Complete(time.Now())

	if s.TimeElapsedSeconds != 45 {
		t.Errorf("elapsed = %d, want the pre-set 45", s.TimeElapsedSeconds)
	}
}

func TestGameSession_Complete_Idempotent(t *testing.T) {
	s := &GameSession{StartedAt: time.Now().Add(-time.Minute)}
	first := time.Now()
	s.Complete(first)
	s.Complete(first.Add(time.Hour))

	if !s.CompletedAt.Equal(first) {
		t.Errorf("completed at moved to %v on a second Complete", s.CompletedAt)
	}
}

func TestBoxInterval_Clamps(t *testing.T) {
	tests := []struct {
		box  int
		want time.Duration
	}{
		{1, 24 * time.Hour},
		{2, 3 * 24 * time.Hour},
		{3, 7 * 24 * time.Hour},
		{4, 14 * 24 * time.Hour},
		{5, 30 * 24 * time.Hour},
		{0, 24 * time.Hour},
		{-3, 24 * time.Hour},
		{99, 30 * 24 * time.Hour},
	}

	for _, tt := range tests {
		if got := BoxInterval(tt.box); got != tt.want {
			t.Errorf("BoxInterval(%d) = %v, want %v", tt.box, got, tt.want)
		}
	}
}

func TestReviewProgress_IsDue(t *testing.T) {
	now := time.Now()

	due := &ReviewProgress{NextReviewAt: now.Add(-time.Minute)}
	if !due.IsDue(now) {
		t.Error("past next-review not due")
	}

	future := &ReviewProgress{NextReviewAt: now.Add(time.Minute)}
	if future.IsDue(now) {
		t.Error("future next-review reported due")
	}
}
