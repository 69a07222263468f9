package driving

import (
	"context"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
)

// ChatService answers user queries from the indexed Moodle content
type ChatService interface {
	// Respond classifies the query, retrieves matching documents and generates an answer
	Respond(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}

// Classifier assigns a query to a context scope
type Classifier interface {
	// Classify returns ScopeUnknown when the model's answer carries no label
	Classify(ctx context.Context, query, userContext string) (domain.Scope, error)
}
