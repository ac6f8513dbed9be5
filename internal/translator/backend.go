package translator

import (
	"context"

	"github.com/Youngzheimer/subtrans/internal/apperr"
	"github.com/Youngzheimer/subtrans/internal/config"
	"github.com/Youngzheimer/subtrans/internal/llm"
)

// NewBackend builds the backend selected by TRANSLATION_PROVIDER.
func NewBackend(ctx context.Context, cfg config.TranslateConfig) (Backend, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		client, err := llm.NewClient(&llm.Config{
			APIKey:      cfg.APIKey,
			APIURL:      cfg.APIURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, apperr.Wrap(apperr.KindConfig, "openai backend", err)
		}
		return NewChatBackend(client), nil
	case config.ProviderGemini, "":
		backend, err := NewGeminiBackend(ctx, GeminiConfig{
			APIKey:   cfg.APIKey,
			Model:    cfg.Model,
			Endpoint: cfg.APIURL,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return nil, apperr.Wrap(apperr.KindConfig, "gemini backend", err)
		}
		return backend, nil
	default:
		return nil, apperr.Newf(apperr.KindConfig, "unknown translation provider %q", cfg.Provider)
	}
}

// NewFromConfig builds a Client with the configured backend and retry policy.
func NewFromConfig(ctx context.Context, cfg config.TranslateConfig, opts ...Option) (*Client, error) {
	backend, err := NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	policy := Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BackoffBase,
		MaxDelay:    cfg.BackoffMax,
	}
	return NewClient(backend, append([]Option{WithPolicy(policy)}, opts...)...), nil
}
