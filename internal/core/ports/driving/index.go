package driving

import (
	"context"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
)

// IndexService exposes the state of the vector index
type IndexService interface {
	// Status returns the most recent index run, or ErrNotFound
	Status(ctx context.Context) (*domain.IndexRun, error)

	// History returns recent index runs, newest first
	History(ctx context.Context, limit int) ([]*domain.IndexRun, error)

	// Ready reports whether an index handle is live
	Ready() bool
}
