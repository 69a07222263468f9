package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
)

// MockLLMService is a mock implementation of LLMService for testing.
// It replies with a fixed answer unless CompleteFn is set, and records every prompt.
type MockLLMService struct {
	mu       sync.Mutex
	model    string
	reply    string
	failNext bool
	prompts  [][]domain.ChatMessage
	options  []domain.GenerationOptions

	// CompleteFn overrides the reply (optional)
	CompleteFn func(messages []domain.ChatMessage, opts domain.GenerationOptions) (string, error)
}

// NewMockLLMService creates a new MockLLMService that always replies with reply
func NewMockLLMService(reply string) *MockLLMService {
	return &MockLLMService{
		model: "mock-llm",
		reply: reply,
	}
}

func (m *MockLLMService) Complete(ctx context.Context, messages []domain.ChatMessage, opts domain.GenerationOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, messages)
	m.options = append(m.options, opts)
	fail := m.failNext
	m.failNext = false
	m.mu.Unlock()

	if fail {
		return "", errors.New("mock llm unavailable")
	}
	if m.CompleteFn != nil {
		return m.CompleteFn(messages, opts)
	}
	return m.reply, nil
}

func (m *MockLLMService) Model() string {
	return m.model
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockLLMService) Close() error {
	return nil
}

// Helper methods for testing

func (m *MockLLMService) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

// Prompts returns every message list sent so far
func (m *MockLLMService) Prompts() [][]domain.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]domain.ChatMessage(nil), m.prompts...)
}

// Options returns the generation options of every call so far
func (m *MockLLMService) Options() []domain.GenerationOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.GenerationOptions(nil), m.options...)
}

// CallCount returns the number of Complete calls
func (m *MockLLMService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
