package driven

import (
	"context"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
)

// VectorIndex is an opened, immutable vector index handle.
// Implementations must be safe for concurrent Search calls.
type VectorIndex interface {
	// Search returns the documents nearest to the embedding that satisfy the filter
	Search(ctx context.Context, embedding []float32, opts domain.SearchOptions) ([]*domain.ScoredDocument, error)

	// Count returns the number of indexed documents
	Count() int

	// Close releases resources held by the handle
	Close() error
}

// VectorIndexStore creates and opens persisted vector indexes
type VectorIndexStore interface {
	// Exists reports whether a persisted index is present
	Exists() (bool, error)

	// Create persists a new index from embedded documents and returns a handle to it
	Create(ctx context.Context, docs []*domain.Document, model string) (VectorIndex, error)

	// Open reopens the persisted index
	Open(ctx context.Context, model string) (VectorIndex, error)
}
