package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driving"
	"github.com/pascalhuerten/moodle-rag/internal/runtime"
)

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

// DefaultPlatformName is substituted for {platform} in the system prompt
const DefaultPlatformName = "FutureLearnLab"

// DefaultFallbackAnswer is returned when retrieval finds nothing, and the model
// is told to answer with it when the context is irrelevant.
const DefaultFallbackAnswer = "Ich habe keine Informationen zu diesem Thema"

// DefaultSystemPrompt sets the assistant role. {platform} is substituted.
const DefaultSystemPrompt = "Du bist ein hilfreicher Assistent der dabei unterstützt, passende Kurse auf der " +
	"Kursplattform {platform} zu finden und über die verfügbaren Lerninhalte zu informieren."

// DefaultUserPrompt wraps the retrieved context and the query.
// {usercontext}, {context}, {query} and {fallback} are substituted per request.
const DefaultUserPrompt = "Nutze den folgenden Kontext, um die nachfolgende Nutzeranfrage zu beantworten\n" +
	"\n" +
	"Der Nutzer befindet sich momentan auf der Kursplatform in folgendem Kontext: {usercontext}\n" +
	"Bei Fragen zu bestimmten Kursinhalten oder verfügbaren Kursen, nutze ausschließlich Informationen aus dem " +
	"nachgehenden Kontext, der auf Basis der Nutzeranfrage zusammengestellt wurde. Nicht alle Informationen sind " +
	"relevant, entscheide also selbst, welche Informationen du teilen möchtest.\n" +
	"{context}\n" +
	"\n" +
	"Kontext Ende\n" +
	"Der Nutzer hat folgende Nachricht geschrieben: {query}\n" +
	"Antworte auf die Nutzeranfrage unter Berücksichtigung des Kontexts und der Nutzeranfrage. " +
	"Wenn der Kontext keine relevanten Informationen enthält, antworte mit '{fallback}'."

// DefaultAnswerOptions is the sampling configuration for the answering model
var DefaultAnswerOptions = domain.GenerationOptions{
	MaxTokens:   512,
	Temperature: 0.1,
	Seed:        42,
}

// chatService implements driving.ChatService
type chatService struct {
	classifier driving.Classifier
	embedder   driven.EmbeddingService
	llm        driven.LLMService
	services   *runtime.Services // live index handle

	systemPrompt string
	userPrompt   string
	fallback     string
	topK         int
	options      domain.GenerationOptions
	logger       *slog.Logger
}

// ChatServiceConfig holds configuration for the chat service.
type ChatServiceConfig struct {
	Classifier driving.Classifier
	Embedder   driven.EmbeddingService
	LLM        driven.LLMService
	Services   *runtime.Services

	PlatformName string // default: DefaultPlatformName
	SystemPrompt string // default: DefaultSystemPrompt
	UserPrompt   string // default: DefaultUserPrompt
	Fallback     string // default: DefaultFallbackAnswer
	TopK         int    // default: domain.DefaultTopK
	Options      *domain.GenerationOptions
	Logger       *slog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(cfg ChatServiceConfig) driving.ChatService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	platform := cmp.Or(cfg.PlatformName, DefaultPlatformName)
	fallback := cmp.Or(cfg.Fallback, DefaultFallbackAnswer)
	system := strings.ReplaceAll(cmp.Or(cfg.SystemPrompt, DefaultSystemPrompt), "{platform}", platform)
	user := strings.ReplaceAll(cmp.Or(cfg.UserPrompt, DefaultUserPrompt), "{fallback}", fallback)

	topK := cfg.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	opts := DefaultAnswerOptions
	if cfg.Options != nil {
		opts = *cfg.Options
	}

	return &chatService{
		classifier:   cfg.Classifier,
		embedder:     cfg.Embedder,
		llm:          cfg.LLM,
		services:     cfg.Services,
		systemPrompt: system,
		userPrompt:   user,
		fallback:     fallback,
		topK:         topK,
		options:      opts,
		logger:       logger,
	}
}

// Respond runs classify, retrieve and generate for a single query.
func (s *chatService) Respond(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	req.Normalise()
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}

	idx := s.services.Index()
	if idx == nil {
		return nil, domain.ErrIndexNotReady
	}

	scope, err := s.classifier.Classify(ctx, req.Message, req.UserContext)
	if err != nil {
		return nil, err
	}

	filter := domain.BuildFilter(scope, req.CourseID)
	s.logger.Debug("retrieving context",
		"scope", scope.String(),
		"course_id", req.CourseID,
		"filtered", !filter.IsEmpty(),
	)

	embedding, err := s.embedder.EmbedQuery(ctx, req.Message)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", domain.ErrProcessing, err)
	}

	hits, err := idx.Search(ctx, embedding, domain.SearchOptions{Limit: s.topK, Filter: filter})
	if err != nil {
		return nil, fmt.Errorf("%w: search index: %v", domain.ErrProcessing, err)
	}
	if len(hits) == 0 {
		return &domain.ChatResponse{Response: s.fallback}, nil
	}

	answer, err := s.llm.Complete(ctx, s.buildPrompt(req, hits), s.options)
	if err != nil {
		return nil, fmt.Errorf("%w: generate answer: %v", domain.ErrProcessing, err)
	}

	return &domain.ChatResponse{Response: answer}, nil
}

// buildPrompt composes the system and user turns for the answering model.
func (s *chatService) buildPrompt(req domain.ChatRequest, hits []*domain.ScoredDocument) []domain.ChatMessage {
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		parts = append(parts, h.Document.Content)
	}

	user := strings.NewReplacer(
		"{usercontext}", req.UserContext,
		"{context}", strings.Join(parts, "\n\n"),
		"{query}", req.Message,
	).Replace(s.userPrompt)

	return []domain.ChatMessage{
		{Role: domain.ChatRoleSystem, Content: s.systemPrompt},
		{Role: domain.ChatRoleUser, Content: user},
	}
}
