package postprocessors

import (
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TextPipeline = (*Pipeline)(nil)

// Pipeline implements TextPipeline.
// It chains text processors in ascending Order.
type Pipeline struct {
	mu         sync.RWMutex
	processors []driven.TextProcessor
	sorted     bool
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		processors: make([]driven.TextProcessor, 0),
	}
}

// Add adds a processor to the pipeline.
func (p *Pipeline) Add(processor driven.TextProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processors = append(p.processors, processor)
	p.sorted = false
}

// Process applies all processors in order.
func (p *Pipeline) Process(text string) string {
	for _, proc := range p.ordered() {
		text = proc.Process(text)
	}
	return text
}

// List returns processor names in order.
func (p *Pipeline) List() []string {
	processors := p.ordered()
	names := make([]string, len(processors))
	for i, proc := range processors {
		names[i] = proc.Name()
	}
	return names
}

func (p *Pipeline) ordered() []driven.TextProcessor {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.sorted {
		sort.SliceStable(p.processors, func(i, j int) bool {
			return p.processors[i].Order() < p.processors[j].Order()
		})
		p.sorted = true
	}
	processors := make([]driven.TextProcessor, len(p.processors))
	copy(processors, p.processors)
	return processors
}

// DefaultPipeline normalises whitespace and, when maxChars > 0, truncates
// the embedding input to maxChars characters.
func DefaultPipeline(maxChars int) *Pipeline {
	p := NewPipeline()
	p.Add(NewWhitespaceNormalizer())
	if maxChars > 0 {
		p.Add(NewTruncator(maxChars))
	}
	return p
}

// WhitespaceNormalizer collapses spaces within lines and runs of blank lines.
type WhitespaceNormalizer struct{}

// Verify interface compliance
var _ driven.TextProcessor = (*WhitespaceNormalizer)(nil)

// NewWhitespaceNormalizer creates a new whitespace normalizer.
func NewWhitespaceNormalizer() *WhitespaceNormalizer {
	return &WhitespaceNormalizer{}
}

// Process normalizes whitespace, keeping single line breaks.
func (w *WhitespaceNormalizer) Process(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Name returns the processor name.
func (w *WhitespaceNormalizer) Name() string {
	return "whitespace-normalizer"
}

// Order returns 0 - runs first.
func (w *WhitespaceNormalizer) Order() int {
	return 0
}

// truncateLookback is how far back the truncator searches for a word boundary
const truncateLookback = 100

// Truncator caps the embedding input at a number of characters,
// breaking at a word boundary where one is close.
type Truncator struct {
	maxChars int
}

// Verify interface compliance
var _ driven.TextProcessor = (*Truncator)(nil)

// NewTruncator creates a truncator for maxChars characters.
func NewTruncator(maxChars int) *Truncator {
	return &Truncator{maxChars: maxChars}
}

// Process truncates text longer than the limit.
func (t *Truncator) Process(text string) string {
	if t.maxChars <= 0 || utf8.RuneCountInString(text) <= t.maxChars {
		return text
	}

	// byte offset of the rune at maxChars
	end, n := 0, 0
	for i := range text {
		if n == t.maxChars {
			end = i
			break
		}
		n++
	}

	cut := text[:end]
	searchStart := max(0, len(cut)-truncateLookback)
	if idx := strings.LastIndexFunc(cut[searchStart:], unicode.IsSpace); idx > 0 {
		cut = cut[:searchStart+idx]
	}
	return strings.TrimRightFunc(cut, unicode.IsSpace)
}

// Name returns the processor name.
func (t *Truncator) Name() string {
	return "truncator"
}

// Order returns 10 - runs after whitespace normalisation.
func (t *Truncator) Order() int {
	return 10
}
