package leitner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flagwars/backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

var (
	_ progressRepo = &progressRepoMock{}
	_ countryRepo  = &countryRepoMock{}
)

type progressRepoMock struct {
	GetByCountryFunc      func(ctx context.Context, userID, countryID uuid.UUID) (*domain.ReviewProgress, error)
	ListDueFunc           func(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.ReviewProgress, error)
	CountDueFunc          func(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
	CountByBoxFunc        func(ctx context.Context, userID uuid.UUID) (domain.BoxCounts, error)
	CountByUserFunc       func(ctx context.Context, userID uuid.UUID) (int, error)
	ReviewTotalsFunc      func(ctx context.Context, userID uuid.UUID) (int, int, error)
	MissingCountryIDsFunc func(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error)
	CreateFunc            func(ctx context.Context, progress *domain.ReviewProgress) (*domain.ReviewProgress, error)
	UpdateFunc            func(ctx context.Context, progress *domain.ReviewProgress) (*domain.ReviewProgress, error)
}

func (m *progressRepoMock) GetByCountry(ctx context.Context, userID, countryID uuid.UUID) (*domain.ReviewProgress, error) {
	return m.GetByCountryFunc(ctx, userID, countryID)
}

func (m *progressRepoMock) ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.ReviewProgress, error) {
	return m.ListDueFunc(ctx, userID, now, limit)
}

func (m *progressRepoMock) CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	return m.CountDueFunc(ctx, userID, now)
}

func (m *progressRepoMock) CountByBox(ctx context.Context, userID uuid.UUID) (domain.BoxCounts, error) {
	return m.CountByBoxFunc(ctx, userID)
}

func (m *progressRepoMock) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.CountByUserFunc(ctx, userID)
}

func (m *progressRepoMock) ReviewTotals(ctx context.Context, userID uuid.UUID) (int, int, error) {
	return m.ReviewTotalsFunc(ctx, userID)
}

func (m *progressRepoMock) MissingCountryIDs(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	return m.MissingCountryIDsFunc(ctx, userID, limit)
}

func (m *progressRepoMock) Create(ctx context.Context, progress *domain.ReviewProgress) (*domain.ReviewProgress, error) {
	return m.CreateFunc(ctx, progress)
}

func (m *progressRepoMock) Update(ctx context.Context, progress *domain.ReviewProgress) (*domain.ReviewProgress, error) {
	return m.UpdateFunc(ctx, progress)
}

type countryRepoMock struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Country, error)
	CountFunc   func(ctx context.Context) (int, error)
}

func (m *countryRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Country, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *countryRepoMock) Count(ctx context.Context) (int, error) {
	return m.CountFunc(ctx)
}
