package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat-completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Provider interface {
	// Complete returns the full text of the first candidate.
	Complete(ctx context.Context, messages []Message) (string, error)
	// StreamAnswer returns a stream of text chunks (incremental).
	StreamAnswer(ctx context.Context, messages []Message) (chunks <-chan string, errs <-chan error)
	Model() string
	Close() error
}
