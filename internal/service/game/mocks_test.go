package game

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/flagwars/backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

var (
	_ sessionRepo     = &sessionRepoMock{}
	_ countryRepo     = &countryRepoMock{}
	_ scorePublisher  = &scorePublisherMock{}
	_ statsRecomputer = &statsRecomputerMock{}
	_ dispatcher      = &dispatcherMock{}
	_ txManager       = &txManagerMock{}
)

type sessionRepoMock struct {
	GetActiveFunc func(ctx context.Context, userID uuid.UUID) (*domain.GameSession, error)
	ListFunc      func(ctx context.Context, userID uuid.UUID, filter domain.SessionFilter) ([]*domain.GameSession, int, error)
	CreateFunc    func(ctx context.Context, session *domain.GameSession) (*domain.GameSession, error)
	UpdateFunc    func(ctx context.Context, session *domain.GameSession) (*domain.GameSession, error)
}

func (m *sessionRepoMock) GetActive(ctx context.Context, userID uuid.UUID) (*domain.GameSession, error) {
	return m.GetActiveFunc(ctx, userID)
}

func (m *sessionRepoMock) List(ctx context.Context, userID uuid.UUID, filter domain.SessionFilter) ([]*domain.GameSession, int, error) {
	return m.ListFunc(ctx, userID, filter)
}

func (m *sessionRepoMock) Create(ctx context.Context, session *domain.GameSession) (*domain.GameSession, error) {
	return m.CreateFunc(ctx, session)
}

func (m *sessionRepoMock) Update(ctx context.Context, session *domain.GameSession) (*domain.GameSession, error) {
	return m.UpdateFunc(ctx, session)
}

type countryRepoMock struct {
	GetByIDFunc         func(ctx context.Context, id uuid.UUID) (*domain.Country, error)
	CountFunc           func(ctx context.Context) (int, error)
	RandomSampleFunc    func(ctx context.Context, n int) ([]domain.Country, error)
	RandomExcludingFunc func(ctx context.Context, excluded []uuid.UUID) (*domain.Country, error)
}

func (m *countryRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Country, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *countryRepoMock) Count(ctx context.Context) (int, error) {
	return m.CountFunc(ctx)
}

func (m *countryRepoMock) RandomSample(ctx context.Context, n int) ([]domain.Country, error) {
	return m.RandomSampleFunc(ctx, n)
}

func (m *countryRepoMock) RandomExcluding(ctx context.Context, excluded []uuid.UUID) (*domain.Country, error) {
	return m.RandomExcludingFunc(ctx, excluded)
}

type scorePublisherMock struct {
	UpsertFunc func(ctx context.Context, userID uuid.UUID, score int) error
}

func (m *scorePublisherMock) Upsert(ctx context.Context, userID uuid.UUID, score int) error {
	return m.UpsertFunc(ctx, userID, score)
}

type statsRecomputerMock struct {
	RecomputeFunc func(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)
}

func (m *statsRecomputerMock) Recompute(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	return m.RecomputeFunc(ctx, userID)
}

// dispatcherMock records dispatched task names and runs each task inline so
// tests observe their effects synchronously.
type dispatcherMock struct {
	mu    sync.Mutex
	Tasks []string

	// SkipRun leaves tasks unexecuted when a test only cares about dispatch.
	SkipRun bool
}

func (m *dispatcherMock) Dispatch(name string, fn func(ctx context.Context) error) {
	m.mu.Lock()
	m.Tasks = append(m.Tasks, name)
	m.mu.Unlock()
	if !m.SkipRun {
		_ = fn(context.Background())
	}
}

func (m *dispatcherMock) Dispatched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Tasks...)
}

// txManagerMock runs the callback directly and counts the transactions
// opened.
type txManagerMock struct {
	Calls       int
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}
