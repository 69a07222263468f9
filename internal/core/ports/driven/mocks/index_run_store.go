package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
)

// MockIndexRunStore is an in-memory IndexRunStore for testing
type MockIndexRunStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.IndexRun

	// SaveErr makes every Save fail (optional)
	SaveErr error
}

// NewMockIndexRunStore creates a new MockIndexRunStore
func NewMockIndexRunStore() *MockIndexRunStore {
	return &MockIndexRunStore{
		runs: make(map[string]*domain.IndexRun),
	}
}

func (m *MockIndexRunStore) Save(ctx context.Context, run *domain.IndexRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	cp := *run
	m.runs[run.ID] = &cp
	return nil
}

func (m *MockIndexRunStore) Get(ctx context.Context, id string) (*domain.IndexRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (m *MockIndexRunStore) Latest(ctx context.Context) (*domain.IndexRun, error) {
	runs, _ := m.List(ctx, 1)
	if len(runs) == 0 {
		return nil, domain.ErrNotFound
	}
	return runs[0], nil
}

func (m *MockIndexRunStore) List(ctx context.Context, limit int) ([]*domain.IndexRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runs := make([]*domain.IndexRun, 0, len(m.runs))
	for _, r := range m.runs {
		cp := *r
		runs = append(runs, &cp)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
