package runtime

import (
	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
)

// Services holds the live vector index handle.
// The rebuild job replaces the handle, request handlers read it.
// Thread-safe for concurrent access.
type Services struct {
	// Config tracks readiness and the last index run
	config *domain.RuntimeConfig

	index atomicIndex
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// Index returns the current index handle (may be nil before the first load)
func (s *Services) Index() driven.VectorIndex {
	return s.index.Load()
}

// SetIndex swaps in a fully built index handle.
// The previous handle is not closed: requests that already hold it keep
// searching it until they finish.
func (s *Services) SetIndex(idx driven.VectorIndex) {
	s.index.Store(idx)
	s.config.SetIndexLoaded(idx != nil)
}
