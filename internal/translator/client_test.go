package translator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Youngzheimer/subtrans/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
)

// scriptedBackend returns errs[i] on call i, then reply.
type scriptedBackend struct {
	mu       sync.Mutex
	errs     []error
	reply    string
	calls    int
	requests []Request
}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) Generate(ctx context.Context, req Request) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	i := b.calls
	b.calls++
	if i < len(b.errs) && b.errs[i] != nil {
		return "", b.errs[i]
	}
	return b.reply, nil
}

func quotaErr() error {
	return &googleapi.Error{Code: 429, Message: "Resource has been exhausted (e.g. check quota)."}
}

type recordedSleeps struct {
	delays []time.Duration
}

func (r *recordedSleeps) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func testPolicy() Policy {
	return Policy{MaxAttempts: 5, BaseDelay: 10 * time.Second, MaxDelay: 60 * time.Second}
}

func TestTranslate_SucceedsOnNthAttempt(t *testing.T) {
	for n := 1; n <= 5; n++ {
		errs := make([]error, n-1)
		for i := range errs {
			errs[i] = quotaErr()
		}
		backend := &scriptedBackend{errs: errs, reply: "1\n00:00:01,000 --> 00:00:02,000\nBonjour\n"}
		sleeps := &recordedSleeps{}
		client := NewClient(backend, WithPolicy(testPolicy()), WithSleeper(sleeps.sleep))

		got, err := client.Translate(context.Background(), "1\n00:00:01,000 --> 00:00:02,000\nHello\n", language.French)
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, "1\n00:00:01,000 --> 00:00:02,000\nBonjour", got)
		assert.Equal(t, n, backend.calls)
		assert.Len(t, sleeps.delays, n-1)
	}
}

func TestTranslate_QuotaExhausted(t *testing.T) {
	errs := make([]error, 10)
	for i := range errs {
		errs[i] = quotaErr()
	}
	backend := &scriptedBackend{errs: errs}
	sleeps := &recordedSleeps{}
	client := NewClient(backend, WithPolicy(testPolicy()), WithSleeper(sleeps.sleep))

	_, err := client.Translate(context.Background(), "text", language.French)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindQuotaExceeded))
	assert.True(t, apperr.IsKind(err, apperr.KindTranslation))
	assert.Equal(t, 5, backend.calls)
	assert.Equal(t, []time.Duration{10 * time.Second, 20 * time.Second, 40 * time.Second, 60 * time.Second}, sleeps.delays)

	var apiErr *googleapi.Error
	assert.True(t, errors.As(err, &apiErr))
}

func TestTranslate_NonQuotaFailsImmediately(t *testing.T) {
	backend := &scriptedBackend{errs: []error{&googleapi.Error{Code: 400, Message: "API key not valid"}}}
	sleeps := &recordedSleeps{}
	client := NewClient(backend, WithPolicy(testPolicy()), WithSleeper(sleeps.sleep))

	_, err := client.Translate(context.Background(), "text", language.French)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTranslation))
	assert.False(t, apperr.IsKind(err, apperr.KindQuotaExceeded))
	assert.Equal(t, 1, backend.calls)
	assert.Empty(t, sleeps.delays)
}

func TestTranslate_AcceptsEmptyResponse(t *testing.T) {
	client := NewClient(&scriptedBackend{reply: ""}, WithSleeper(func(context.Context, time.Duration) error { return nil }))

	got, err := client.Translate(context.Background(), "a long input text", language.Japanese)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTranslate_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	backend := &scriptedBackend{errs: []error{quotaErr(), quotaErr()}}
	client := NewClient(backend, WithPolicy(testPolicy()), WithSleeper(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	_, err := client.Translate(ctx, "text", language.French)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, apperr.IsKind(err, apperr.KindQuotaExceeded))
	assert.Equal(t, 1, backend.calls)
}

func TestTranslate_PromptNamesTargetLanguage(t *testing.T) {
	backend := &scriptedBackend{reply: "ok"}
	client := NewClient(backend)

	_, err := client.Translate(context.Background(), "1\n00:00:01,000 --> 00:00:02,000\nHello\n", language.Korean)
	require.NoError(t, err)
	require.Len(t, backend.requests, 1)
	assert.Contains(t, backend.requests[0].SystemPrompt, "Korean")
	assert.Equal(t, "1\n00:00:01,000 --> 00:00:02,000\nHello\n", backend.requests[0].Prompt)
}
