package domain

// DefaultUserContext is used when a chat request carries no user context
const DefaultUserContext = "Dashboard"

// ChatRequest is a single user query
type ChatRequest struct {
	Message     string `json:"message" example:"Welche Kurse kann ich belegen?"`
	CourseID    string `json:"course_id,omitempty" example:"42"`
	UserContext string `json:"usercontext,omitempty" example:"Dashboard"`
}

// Normalise applies defaults to optional fields
func (r *ChatRequest) Normalise() {
	if r.UserContext == "" {
		r.UserContext = DefaultUserContext
	}
}

// ChatResponse is the generated answer
type ChatResponse struct {
	Response string `json:"response"`
}

// ChatRole is the author of a chat message
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a prompt sent to a language model
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// GenerationOptions controls sampling for a language model call
type GenerationOptions struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Seed        int     `json:"seed"`
}
