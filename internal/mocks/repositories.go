package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/ambience/internal/domain"
)

// MockSessionStore is an in-memory SessionStore that copies on load and save
type MockSessionStore struct {
	mu         sync.Mutex
	sessions   map[string]domain.Session
	LoadFunc   func(ctx context.Context, id string) (*domain.Session, error)
	SaveFunc   func(ctx context.Context, session *domain.Session) error
	DeleteFunc func(ctx context.Context, id string) error
	Saves      int
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		sessions: make(map[string]domain.Session),
	}
}

func (m *MockSessionStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MockSessionStore) Save(ctx context.Context, session *domain.Session) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = *session
	m.Saves++
	return nil
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// MockCatalogFetcher is a mock implementation of CatalogFetcher
type MockCatalogFetcher struct {
	Catalog          domain.Catalog
	Err              error
	FetchCatalogFunc func(ctx context.Context) (domain.Catalog, error)

	mu    sync.Mutex
	calls int
}

func (m *MockCatalogFetcher) FetchCatalog(ctx context.Context) (domain.Catalog, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.FetchCatalogFunc != nil {
		return m.FetchCatalogFunc(ctx)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Catalog, nil
}

// Calls returns how many times FetchCatalog was invoked
func (m *MockCatalogFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
