package translator

import "context"

// Request is one prompt sent to a translation backend.
type Request struct {
	SystemPrompt string
	Prompt       string
}

// Backend sends a single request to a translation service. Implementations
// do not retry; Client owns the retry policy.
type Backend interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}
