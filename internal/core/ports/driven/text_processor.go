package driven

// TextProcessor prepares document text before it is embedded.
// The stored document content is never changed, only the embedding input.
type TextProcessor interface {
	// Process rewrites the text.
	Process(text string) string

	// Name returns the processor name for logging/debugging.
	Name() string

	// Order returns the processor order in the pipeline (lower = earlier).
	Order() int
}

// TextPipeline chains text processors in order.
type TextPipeline interface {
	// Process applies all processors in order.
	Process(text string) string

	// Add adds a processor to the pipeline.
	// Processors are sorted by Order() before processing.
	Add(processor TextProcessor)

	// List returns processor names in order.
	List() []string
}
