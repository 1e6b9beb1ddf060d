package chat

// Roles used when structuring messages for LLM providers.
const (
	ChatRoleUser   = "user"
	ChatRoleAgent  = "assistant"
	ChatRoleSystem = "system"
)

// ChatMessage represents a single message in an LLM exchange.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse is the reply returned by an LLM provider.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
}
