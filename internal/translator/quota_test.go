package translator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Youngzheimer/subtrans/internal/llm"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestIsQuota(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "googleapi 429", err: &googleapi.Error{Code: 429}, want: true},
		{name: "wrapped googleapi 429", err: fmt.Errorf("gemini: %w", &googleapi.Error{Code: 429}), want: true},
		{name: "googleapi reason", err: &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}}}, want: true},
		{name: "googleapi 400", err: &googleapi.Error{Code: 400, Message: "API key not valid"}, want: false},
		{name: "chat 429", err: &llm.StatusError{StatusCode: 429}, want: true},
		{name: "chat 500", err: &llm.StatusError{StatusCode: 500, Body: "internal"}, want: false},
		{name: "chat insufficient quota", err: &llm.StatusError{StatusCode: 400, API: &llm.Error{Type: "insufficient_quota"}}, want: true},
		{name: "googleapi 403 quota project", err: &googleapi.Error{Code: 403, Message: "quota project not set for this API"}, want: false},
		{name: "wrapped googleapi 403 quota project", err: fmt.Errorf("gemini: %w", &googleapi.Error{Code: 403, Message: "Quota project mismatch"}), want: false},
		{name: "chat 403 quota text", err: &llm.StatusError{StatusCode: 403, Body: "billing quota account disabled"}, want: false},
		{name: "resource exhausted text", err: errors.New("rpc error: code = ResourceExhausted desc = RESOURCE_EXHAUSTED"), want: true},
		{name: "plain network error", err: errors.New("dial tcp: connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQuota(tt.err))
		})
	}
}
