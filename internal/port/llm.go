package port

import "context"

// Message is one turn of a chat conversation.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// LLM is the external generation capability. Implementations own their
// retry/timeout policy; exhaustion surfaces as an error.
type LLM interface {
	Generate(ctx context.Context, messages []Message) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
