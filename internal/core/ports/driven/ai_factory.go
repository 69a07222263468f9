package driven

import (
	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
)

// AIServiceFactory creates AI services based on configuration
type AIServiceFactory interface {
	// CreateEmbeddingService creates an embedding service from settings
	CreateEmbeddingService(settings *domain.EmbeddingSettings) (EmbeddingService, error)

	// CreateLLMService creates an LLM service from settings
	CreateLLMService(settings *domain.LLMSettings) (LLMService, error)
}
