package mocks

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
)

// MockVectorIndex is an in-memory vector index for testing
type MockVectorIndex struct {
	mu     sync.Mutex
	docs   []*domain.Document
	closed bool

	// SearchErr makes every Search fail (optional)
	SearchErr error
	lastOpts  domain.SearchOptions
	searches  int
}

// NewMockVectorIndex creates an index over the given documents
func NewMockVectorIndex(docs ...*domain.Document) *MockVectorIndex {
	return &MockVectorIndex{docs: docs}
}

func (m *MockVectorIndex) Search(ctx context.Context, embedding []float32, opts domain.SearchOptions) ([]*domain.ScoredDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches++
	m.lastOpts = opts
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}

	var hits []*domain.ScoredDocument
	for _, doc := range m.docs {
		if !opts.Filter.Matches(doc.Metadata) {
			continue
		}
		hits = append(hits, &domain.ScoredDocument{Document: doc, Score: cosine(embedding, doc.Embedding)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if opts.Limit > 0 && len(hits) > opts.Limit {
		hits = hits[:opts.Limit]
	}
	return hits, nil
}

func (m *MockVectorIndex) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *MockVectorIndex) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Helper methods for testing

// LastOptions returns the options of the most recent Search
func (m *MockVectorIndex) LastOptions() domain.SearchOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOpts
}

// Searches returns the number of Search calls
func (m *MockVectorIndex) Searches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searches
}

// Closed reports whether Close was called
func (m *MockVectorIndex) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// MockVectorIndexStore is an in-memory VectorIndexStore for testing
type MockVectorIndexStore struct {
	mu      sync.Mutex
	persist []*domain.Document
	exists  bool
	model   string

	// Error injection (optional)
	ExistsErr error
	CreateErr error
	OpenErr   error

	creates int
	opens   int
}

// NewMockVectorIndexStore creates an empty store
func NewMockVectorIndexStore() *MockVectorIndexStore {
	return &MockVectorIndexStore{}
}

func (m *MockVectorIndexStore) Exists() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	return m.exists, nil
}

func (m *MockVectorIndexStore) Create(ctx context.Context, docs []*domain.Document, model string) (driven.VectorIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.persist = docs
	m.model = model
	m.exists = true
	return NewMockVectorIndex(docs...), nil
}

func (m *MockVectorIndexStore) Open(ctx context.Context, model string) (driven.VectorIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opens++
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	if !m.exists {
		return nil, domain.ErrNotFound
	}
	if m.model != "" && model != m.model {
		return nil, errors.New("mock vector store: embedding model mismatch")
	}
	return NewMockVectorIndex(m.persist...), nil
}

// Helper methods for testing

// Seed marks the store as persisted with the given documents
func (m *MockVectorIndexStore) Seed(model string, docs ...*domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persist = docs
	m.model = model
	m.exists = true
}

// Documents returns the persisted documents
func (m *MockVectorIndexStore) Documents() []*domain.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persist
}

// Counts returns how often Create and Open were called
func (m *MockVectorIndexStore) Counts() (creates, opens int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates, m.opens
}
