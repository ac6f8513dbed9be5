package translator

import (
	"context"
	"errors"

	"github.com/Youngzheimer/subtrans/internal/apperr"
	"github.com/Youngzheimer/subtrans/pkg/icron"
	"github.com/Youngzheimer/subtrans/pkg/log"
	"golang.org/x/text/language"
)

// Client translates subtitle text through a Backend, retrying quota
// failures with exponential backoff.
type Client struct {
	backend Backend
	policy  Policy
	sleep   Sleeper
}

// Option is a functional option for configuring Client
type Option func(*Client)

func WithPolicy(p Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithSleeper replaces the backoff wait (for testing).
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		c.sleep = s
	}
}

func NewClient(backend Backend, opts ...Option) *Client {
	c := &Client{
		backend: backend,
		policy:  DefaultPolicy(),
		sleep:   icron.SleepWithContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Translate sends sourceText in one request and returns the response with
// any code fence removed. Empty or short responses are returned as is.
func (c *Client) Translate(ctx context.Context, sourceText string, target language.Tag) (string, error) {
	req := Request{
		SystemPrompt: systemPrompt(target),
		Prompt:       userPrompt(sourceText),
	}

	maxAttempts := c.policy.attempts()
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := c.backend.Generate(ctx, req)
		if err == nil {
			return CleanResponse(text), nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", apperr.Wrap(apperr.KindTranslation, "translation cancelled", ctxErr)
		}
		if !IsQuota(err) {
			return "", apperr.Wrap(apperr.KindTranslation, "translation request failed", err).
				WithContext("backend", c.backend.Name())
		}

		lastErr = err
		if attempt == maxAttempts {
			break
		}

		delay := c.policy.Delay(attempt)
		log.Warn("Quota exceeded on %s (attempt %d/%d), retrying in %s: %v",
			c.backend.Name(), attempt, maxAttempts, delay, err)
		if err := c.sleep(ctx, delay); err != nil {
			return "", apperr.Wrap(apperr.KindTranslation, "translation cancelled", errors.Join(err, lastErr))
		}
	}

	return "", apperr.Wrapf(apperr.KindQuotaExceeded, lastErr, "quota still exceeded after %d attempts", maxAttempts).
		WithContext("backend", c.backend.Name())
}
