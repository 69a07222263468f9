package ai

import (
	"fmt"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
)

// Ensure Factory implements AIServiceFactory
var _ driven.AIServiceFactory = (*Factory)(nil)

// Factory creates AI services based on configuration
type Factory struct{}

// NewFactory creates a new AI service factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateEmbeddingService creates an embedding service from settings
func (f *Factory) CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding service is not configured", domain.ErrConfiguration)
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		svc, err := NewOpenAIEmbedding(settings.APIKey, settings.Model, settings.BaseURL,
			settings.QueryInstruction, settings.DocumentInstruction)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case domain.AIProviderOllama:
		svc, err := NewOllamaEmbedding(settings.BaseURL, settings.Model,
			settings.QueryInstruction, settings.DocumentInstruction)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfiguration, settings.Provider)
	}
}

// CreateLLMService creates an LLM service from settings
func (f *Factory) CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: LLM service is not configured", domain.ErrConfiguration)
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		svc, err := NewOpenAILLM(settings.APIKey, settings.Model, settings.BaseURL)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case domain.AIProviderOllama:
		svc, err := NewOllamaLLM(settings.BaseURL, settings.Model)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("%w: unknown LLM provider %q", domain.ErrConfiguration, settings.Provider)
	}
}
