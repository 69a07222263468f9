package domain

// AIProvider identifies the embedding or language model backend
type AIProvider string

const (
	AIProviderOpenAI AIProvider = "openai" // any OpenAI-compatible endpoint, e.g. LM Studio
	AIProviderOllama AIProvider = "ollama"
)

// Instruction prefixes for instruction-tuned embedding models.
// Queries and documents are embedded with different instructions.
const (
	DefaultQueryInstruction    = "Represent the user query for retrieving relevant documents: "
	DefaultDocumentInstruction = "Represent the document for retrieval: "
)

// EmbeddingSettings configures the embedding service
type EmbeddingSettings struct {
	Provider            AIProvider `json:"provider" yaml:"provider"`
	Model               string     `json:"model" yaml:"model"`
	APIKey              string     `json:"-" yaml:"-"` // Never serialize
	BaseURL             string     `json:"base_url,omitempty" yaml:"base_url"`
	QueryInstruction    string     `json:"query_instruction,omitempty" yaml:"query_instruction"`
	DocumentInstruction string     `json:"document_instruction,omitempty" yaml:"document_instruction"`
}

// IsConfigured returns true if embedding settings are properly configured
func (e *EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Model == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures one language model endpoint
type LLMSettings struct {
	Provider AIProvider `json:"provider" yaml:"provider"`
	Model    string     `json:"model" yaml:"model"`
	APIKey   string     `json:"-" yaml:"-"` // Never serialize
	BaseURL  string     `json:"base_url,omitempty" yaml:"base_url"`
}

// IsConfigured returns true if LLM settings are properly configured.
// Self-hosted servers ignore the model name, so only the endpoint is required.
func (l *LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.BaseURL == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RequiresAPIKey returns true if this provider requires an API key
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOllama:
		return false // Self-hosted, no API key needed
	default:
		return true
	}
}

// IsValid returns true if this is a known provider
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderOllama:
		return true
	default:
		return false
	}
}
