package leaderboard

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/flagwars/backend/internal/config"
	"github.com/flagwars/backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Mock
// ---------------------------------------------------------------------------

var _ scoreIndex = &scoreIndexMock{}

type scoreIndexMock struct {
	UpsertFunc       func(ctx context.Context, userID uuid.UUID, score int) error
	TopNFunc         func(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	RankOfFunc       func(ctx context.Context, userID uuid.UUID) (*domain.LeaderboardEntry, error)
	SaveSnapshotFunc func(ctx context.Context, snapshot domain.LeaderboardSnapshot, ttl time.Duration) error
	GetSnapshotFunc  func(ctx context.Context, date time.Time) (*domain.LeaderboardSnapshot, error)
}

func (m *scoreIndexMock) Upsert(ctx context.Context, userID uuid.UUID, score int) error {
	return m.UpsertFunc(ctx, userID, score)
}

func (m *scoreIndexMock) TopN(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	return m.TopNFunc(ctx, limit)
}

func (m *scoreIndexMock) RankOf(ctx context.Context, userID uuid.UUID) (*domain.LeaderboardEntry, error) {
	return m.RankOfFunc(ctx, userID)
}

func (m *scoreIndexMock) SaveSnapshot(ctx context.Context, snapshot domain.LeaderboardSnapshot, ttl time.Duration) error {
	return m.SaveSnapshotFunc(ctx, snapshot, ttl)
}

func (m *scoreIndexMock) GetSnapshot(ctx context.Context, date time.Time) (*domain.LeaderboardSnapshot, error) {
	return m.GetSnapshotFunc(ctx, date)
}

func newTestService(index *scoreIndexMock) *Service {
	return &Service{
		index: index,
		log:   slog.Default(),
		cfg: config.LeaderboardConfig{
			Key:          "test:leaderboard",
			TopLimit:     100,
			SnapshotSize: 100,
			SnapshotTTL:  168 * time.Hour,
		},
		now: time.Now,
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestService_TopN_ClampsLimit(t *testing.T) {
	t.Parallel()

	index := &scoreIndexMock{
		TopNFunc: func(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
			if limit != 100 {
				t.Errorf("limit = %d, want clamped 100", limit)
			}
			return []domain.LeaderboardEntry{
				{UserID: uuid.New(), Rank: 1, Score: 50},
				{UserID: uuid.New(), Rank: 2, Score: 40},
			}, nil
		},
	}

	svc := newTestService(index)

	entries, err := svc.TopN(context.Background(), 10_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Score < entries[1].Score {
		t.Error("entries not sorted descending by score")
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Errorf("ranks = %d, %d, want 1, 2", entries[0].Rank, entries[1].Rank)
	}
}

func TestService_TopN_DegradesWhenStoreUnreachable(t *testing.T) {
	t.Parallel()

	index := &scoreIndexMock{
		TopNFunc: func(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
			return nil, domain.ErrUnavailable
		},
	}

	svc := newTestService(index)

	entries, err := svc.TopN(context.Background(), 10)
	if err != nil {
		t.Fatalf("unreachable store surfaced an error: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("got %v, want an empty list", entries)
	}
}

func TestService_RankOf_NeverRanked(t *testing.T) {
	t.Parallel()

	index := &scoreIndexMock{
		RankOfFunc: func(ctx context.Context, userID uuid.UUID) (*domain.LeaderboardEntry, error) {
			return nil, domain.ErrNotFound
		},
	}

	svc := newTestService(index)

	entry, err := svc.RankOf(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry != nil {
		t.Errorf("entry = %+v, want nil for a user never upserted", entry)
	}
}

func TestService_RankOf_DegradesWhenStoreUnreachable(t *testing.T) {
	t.Parallel()

	index := &scoreIndexMock{
		RankOfFunc: func(ctx context.Context, userID uuid.UUID) (*domain.LeaderboardEntry, error) {
			return nil, domain.ErrUnavailable
		},
	}

	svc := newTestService(index)

	entry, err := svc.RankOf(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unreachable store surfaced an error: %v", err)
	}
	if entry != nil {
		t.Errorf("entry = %+v, want nil", entry)
	}
}

func TestService_Upsert_PropagatesErrorForRetry(t *testing.T) {
	t.Parallel()

	index := &scoreIndexMock{
		UpsertFunc: func(ctx context.Context, userID uuid.UUID, score int) error {
			return domain.ErrUnavailable
		},
	}

	svc := newTestService(index)

	err := svc.Upsert(context.Background(), uuid.New(), 42)
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable so the task runner retries", err)
	}
}

func TestService_Snapshot(t *testing.T) {
	t.Parallel()

	top := []domain.LeaderboardEntry{
		{UserID: uuid.New(), Rank: 1, Score: 99},
	}

	var savedTTL time.Duration
	index := &scoreIndexMock{
		TopNFunc: func(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
			if limit != 100 {
				t.Errorf("snapshot size = %d, want 100", limit)
			}
			return top, nil
		},
		SaveSnapshotFunc: func(ctx context.Context, snapshot domain.LeaderboardSnapshot, ttl time.Duration) error {
			savedTTL = ttl
			if len(snapshot.Entries) != 1 {
				t.Errorf("snapshot has %d entries, want 1", len(snapshot.Entries))
			}
			return nil
		},
	}

	svc := newTestService(index)

	snapshot, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot.Entries) != 1 {
		t.Errorf("snapshot entries = %d, want 1", len(snapshot.Entries))
	}
	if savedTTL != 168*time.Hour {
		t.Errorf("ttl = %v, want 168h", savedTTL)
	}
}

func TestService_SnapshotFor(t *testing.T) {
	t.Parallel()

	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	stored := &domain.LeaderboardSnapshot{
		TakenAt: date,
		Entries: []domain.LeaderboardEntry{{UserID: uuid.New(), Rank: 1, Score: 80}},
	}

	index := &scoreIndexMock{
		GetSnapshotFunc: func(ctx context.Context, d time.Time) (*domain.LeaderboardSnapshot, error) {
			if !d.Equal(date) {
				t.Errorf("looked up %v, want %v", d, date)
			}
			return stored, nil
		},
	}

	svc := newTestService(index)

	snapshot, err := svc.SnapshotFor(context.Background(), date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot.Entries) != 1 || snapshot.Entries[0].Score != 80 {
		t.Errorf("snapshot = %+v, want the stored entry", snapshot)
	}
}

func TestService_SnapshotFor_Expired(t *testing.T) {
	t.Parallel()

	index := &scoreIndexMock{
		GetSnapshotFunc: func(ctx context.Context, d time.Time) (*domain.LeaderboardSnapshot, error) {
			return nil, domain.ErrNotFound
		},
	}

	svc := newTestService(index)

	_, err := svc.SnapshotFor(context.Background(), time.Now().AddDate(0, 0, -30))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for an expired snapshot", err)
	}
}
