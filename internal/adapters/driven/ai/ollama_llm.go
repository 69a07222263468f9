package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
)

// Ensure OllamaLLM implements LLMService
var _ driven.LLMService = (*OllamaLLM)(nil)

// OllamaLLM implements LLMService using the Ollama chat API
type OllamaLLM struct {
	client *api.Client
	model  string
}

// NewOllamaLLM creates a new Ollama chat service
func NewOllamaLLM(baseURL, model string) (*OllamaLLM, error) {
	if model == "" {
		return nil, fmt.Errorf("Ollama model is required")
	}
	client, err := newOllamaClient(baseURL, 2*time.Minute)
	if err != nil {
		return nil, err
	}
	return &OllamaLLM{
		client: client,
		model:  model,
	}, nil
}

// Complete sends the messages and returns the full reply
func (o *OllamaLLM) Complete(ctx context.Context, messages []domain.ChatMessage, opts domain.GenerationOptions) (string, error) {
	stream := false
	req := api.ChatRequest{
		Model:    o.model,
		Messages: make([]api.Message, len(messages)),
		Stream:   &stream,
		Options: map[string]any{
			"temperature": opts.Temperature,
			"seed":        opts.Seed,
		},
	}
	if opts.MaxTokens > 0 {
		req.Options["num_predict"] = opts.MaxTokens
	}
	for i, m := range messages {
		req.Messages[i] = api.Message{Role: string(m.Role), Content: m.Content}
	}

	var b strings.Builder
	err := o.client.Chat(ctx, &req, func(resp api.ChatResponse) error {
		_, err := b.WriteString(resp.Message.Content)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	return b.String(), nil
}

// Model returns the model name being used
func (o *OllamaLLM) Model() string {
	return o.model
}

// Ping verifies the Ollama server is reachable
func (o *OllamaLLM) Ping(ctx context.Context) error {
	return o.client.Heartbeat(ctx)
}

// Close releases resources held by the LLM service
func (o *OllamaLLM) Close() error {
	return nil
}
