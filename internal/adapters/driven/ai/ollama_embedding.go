package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
)

// Ensure OllamaEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*OllamaEmbedding)(nil)

// OllamaEmbedding implements EmbeddingService using a local Ollama server
type OllamaEmbedding struct {
	client      *api.Client
	model       string
	queryPrefix string
	docPrefix   string
}

// NewOllamaEmbedding creates a new Ollama embedding service.
// An empty baseURL uses OLLAMA_HOST or the Ollama default.
func NewOllamaEmbedding(baseURL, model, queryPrefix, docPrefix string) (*OllamaEmbedding, error) {
	if model == "" {
		return nil, fmt.Errorf("Ollama embedding model is required")
	}
	client, err := newOllamaClient(baseURL, 5*time.Minute)
	if err != nil {
		return nil, err
	}
	return &OllamaEmbedding{
		client:      client,
		model:       model,
		queryPrefix: queryPrefix,
		docPrefix:   docPrefix,
	}, nil
}

// Embed generates embeddings for documents in one request
func (e *OllamaEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.embed(ctx, texts, e.docPrefix)
}

// EmbedQuery generates an embedding for a search query
func (e *OllamaEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := e.embed(ctx, []string{query}, e.queryPrefix)
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}
	return embeddings[0], nil
}

// Model returns the model name being used
func (e *OllamaEmbedding) Model() string {
	return e.model
}

// HealthCheck verifies the Ollama server is reachable
func (e *OllamaEmbedding) HealthCheck(ctx context.Context) error {
	return e.client.Heartbeat(ctx)
}

// Close releases resources held by the embedding service
func (e *OllamaEmbedding) Close() error {
	return nil
}

func (e *OllamaEmbedding) embed(ctx context.Context, texts []string, prefix string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = prefix + t
	}

	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: input,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}
