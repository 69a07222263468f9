package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driving"
)

// Ensure classifier implements Classifier
var _ driving.Classifier = (*classifier)(nil)

// DefaultClassifierPrompt asks the model to answer with one bracketed scope label.
// {query} and {usercontext} are substituted per request.
const DefaultClassifierPrompt = "User Query: {query}\n" +
	"User Context: {usercontext}\n" +
	"\n" +
	"Based on the previous query choose which sources are most relevant to answer the user query.\n" +
	"\n" +
	"Choose one of the following options, by referring to its name only:\n" +
	"[" + domain.LabelSiteContext + "]: Includes general information about the site, its features and course offerings.\n" +
	"[" + domain.LabelCourseContext + "]: Includes information about a single specific course and its contents.\n" +
	"[" + domain.LabelUserContext + "]: Includes information about the current user, its bio, learning activity and interests and goals."

// DefaultClassifierOptions bounds the classifier output and keeps sampling deterministic
var DefaultClassifierOptions = domain.GenerationOptions{
	MaxTokens:   128,
	Temperature: 0.1,
	Seed:        42,
}

var bracketLabel = regexp.MustCompile(`\[(.*?)\]`)

// classifier implements driving.Classifier on top of a small language model
type classifier struct {
	llm     driven.LLMService
	prompt  string
	options domain.GenerationOptions
	logger  *slog.Logger
}

// ClassifierConfig holds configuration for the classifier.
type ClassifierConfig struct {
	LLM     driven.LLMService
	Prompt  string                    // default: DefaultClassifierPrompt
	Options *domain.GenerationOptions // default: DefaultClassifierOptions
	Logger  *slog.Logger
}

// NewClassifier creates a new Classifier
func NewClassifier(cfg ClassifierConfig) driving.Classifier {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultClassifierPrompt
	}
	opts := DefaultClassifierOptions
	if cfg.Options != nil {
		opts = *cfg.Options
	}
	return &classifier{
		llm:     cfg.LLM,
		prompt:  prompt,
		options: opts,
		logger:  logger,
	}
}

// Classify asks the model which scope the query belongs to.
// An answer without a bracketed label yields ScopeUnknown, not an error.
func (c *classifier) Classify(ctx context.Context, query, userContext string) (domain.Scope, error) {
	prompt := strings.NewReplacer(
		"{query}", query,
		"{usercontext}", userContext,
	).Replace(c.prompt)

	answer, err := c.llm.Complete(ctx, []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Content: prompt},
	}, c.options)
	if err != nil {
		return domain.ScopeUnknown, fmt.Errorf("%w: classify query: %v", domain.ErrInference, err)
	}

	label, ok := ExtractLabel(answer)
	if !ok {
		c.logger.Debug("classifier answer has no label", "answer", answer)
		return domain.ScopeUnknown, nil
	}

	scope := domain.ParseScope(label)
	c.logger.Debug("query classified", "label", label, "scope", scope.String())
	return scope, nil
}

// ExtractLabel returns the content of the first bracketed token in the answer.
func ExtractLabel(answer string) (string, bool) {
	m := bracketLabel.FindStringSubmatch(answer)
	if m == nil {
		return "", false
	}
	return m[1], true
}
