package translator

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Youngzheimer/subtrans/internal/llm"
	"google.golang.org/api/googleapi"
)

var quotaMarkers = []string{
	"resource_exhausted",
	"resource exhausted",
	"quota",
	"rate limit",
	"rate_limit",
	"too many requests",
}

// IsQuota reports whether err signals temporary over-use of the service.
// Errors carrying an HTTP status are judged on status and reason alone;
// message markers only apply to errors without one.
func IsQuota(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return true
		}
		for _, item := range apiErr.Errors {
			if item.Reason == "rateLimitExceeded" || item.Reason == "quotaExceeded" {
				return true
			}
		}
		return false
	}

	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.IsRateLimited()
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
