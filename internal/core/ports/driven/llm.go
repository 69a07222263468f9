package driven

import (
	"context"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
)

// LLMService generates text from a chat-style prompt
type LLMService interface {
	// Complete sends the messages and returns the raw text of the model's reply
	Complete(ctx context.Context, messages []domain.ChatMessage, opts domain.GenerationOptions) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}
