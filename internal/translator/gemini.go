package translator

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	APIKey   string
	Model    string
	Endpoint string // optional, e.g. a proxy in front of generativelanguage.googleapis.com
	Timeout  time.Duration

	HTTPClient *http.Client // optional, for testing
}

// GeminiBackend calls models.generateContent on the Generative Language API.
type GeminiBackend struct {
	svc     *generativelanguage.Service
	model   string
	timeout time.Duration
}

func NewGeminiBackend(ctx context.Context, cfg GeminiConfig) (*GeminiBackend, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("gemini: model is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create service: %w", err)
	}

	model := cfg.Model
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &GeminiBackend{svc: svc, model: model, timeout: timeout}, nil
}

func (b *GeminiBackend) Name() string {
	return "gemini"
}

// Generate returns the concatenated text parts of the first candidate.
func (b *GeminiBackend) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	body := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: req.Prompt}},
		}},
	}
	if req.SystemPrompt != "" {
		body.SystemInstruction = &generativelanguage.Content{
			Parts: []*generativelanguage.Part{{Text: req.SystemPrompt}},
		}
	}

	resp, err := b.svc.Models.GenerateContent(b.model, body).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gemini generateContent: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}
