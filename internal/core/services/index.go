package services

import (
	"context"
	"errors"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driving"
	"github.com/pascalhuerten/moodle-rag/internal/runtime"
)

// Ensure indexService implements IndexService
var _ driving.IndexService = (*indexService)(nil)

// indexService reports index state, preferring the persisted run history
type indexService struct {
	runs     driven.IndexRunStore // may be nil
	services *runtime.Services
}

// NewIndexService creates a new IndexService. runs may be nil, in which case
// only the last run of this process is known.
func NewIndexService(runs driven.IndexRunStore, services *runtime.Services) driving.IndexService {
	return &indexService{
		runs:     runs,
		services: services,
	}
}

// Status returns the most recent index run
func (s *indexService) Status(ctx context.Context) (*domain.IndexRun, error) {
	if s.runs != nil {
		run, err := s.runs.Latest(ctx)
		if err == nil {
			return run, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	if run := s.services.Config().LastRun(); run != nil {
		return run, nil
	}
	return nil, domain.ErrNotFound
}

// History returns recent index runs, newest first
func (s *indexService) History(ctx context.Context, limit int) ([]*domain.IndexRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if s.runs != nil {
		return s.runs.List(ctx, limit)
	}
	if run := s.services.Config().LastRun(); run != nil {
		return []*domain.IndexRun{run}, nil
	}
	return []*domain.IndexRun{}, nil
}

// Ready reports whether an index handle is live
func (s *indexService) Ready() bool {
	return s.services.Config().CanAnswer()
}
