package driven

import (
	"context"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
)

// IndexRunStore handles index run history persistence (PostgreSQL)
type IndexRunStore interface {
	// Save creates or updates a run
	Save(ctx context.Context, run *domain.IndexRun) error

	// Get retrieves a run by ID
	Get(ctx context.Context, id string) (*domain.IndexRun, error)

	// Latest retrieves the most recently started run
	Latest(ctx context.Context) (*domain.IndexRun, error)

	// List retrieves the most recent runs, newest first
	List(ctx context.Context, limit int) ([]*domain.IndexRun, error)
}
