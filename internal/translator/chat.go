package translator

import (
	"context"

	"github.com/Youngzheimer/subtrans/internal/llm"
)

// ChatBackend sends requests to an OpenAI-compatible chat endpoint.
type ChatBackend struct {
	client *llm.Client
}

func NewChatBackend(client *llm.Client) *ChatBackend {
	return &ChatBackend{client: client}
}

func (b *ChatBackend) Name() string {
	return "openai"
}

func (b *ChatBackend) Generate(ctx context.Context, req Request) (string, error) {
	return b.client.SimpleChat(ctx, req.Prompt, req.SystemPrompt)
}
