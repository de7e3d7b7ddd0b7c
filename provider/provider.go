package provider

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no API credentials are available.
var ErrNotConfigured = errors.New("completion provider not configured")

// Message represents a message in a conversation.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Options tune a single completion request. The zero value means
// "use the provider defaults".
type Options struct {
	// Model overrides the provider's default model when non-empty.
	Model       string
	Temperature float64
	MaxTokens   int
}

// CompletionProvider is the boundary to the external text-completion service.
// Implementations return plain text; callers own all fallback behaviour.
type CompletionProvider interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}
