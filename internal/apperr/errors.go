// Package apperr holds the error taxonomy shared by the pipeline stages.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindProbe
	KindExtract
	KindFormat
	KindTranslation
	KindQuotaExceeded
	KindOutput
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "ConfigurationError"
	case KindProbe:
		return "ProbeError"
	case KindExtract:
		return "ExtractError"
	case KindFormat:
		return "FormatError"
	case KindTranslation:
		return "TranslationError"
	case KindQuotaExceeded:
		return "QuotaExceededError"
	case KindOutput:
		return "OutputError"
	default:
		return "UnknownError"
	}
}

// Is reports whether k satisfies want. A quota failure is a translation
// failure too.
func (k Kind) Is(want Kind) bool {
	if k == want {
		return true
	}
	return k == KindQuotaExceeded && want == KindTranslation
}

type Error struct {
	Kind    Kind
	Message string
	Context map[string]any
	Cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Context: make(map[string]any),
	}
}

func Wrap(kind Kind, message string, cause error) *Error {
	e := New(kind, message)
	e.Cause = cause
	return e
}

func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

func Wrapf(kind Kind, cause error, format string, args ...any) *Error {
	return Wrap(kind, fmt.Sprintf(format, args...), cause)
}

func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("[%s] %s", e.Kind, e.Message)}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ctxParts := make([]string, 0, len(keys))
		for _, k := range keys {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, "context: "+strings.Join(ctxParts, ", "))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// IsKind reports whether any *Error in err's chain satisfies kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind.Is(kind) {
			return true
		}
		err = e.Cause
	}
	return false
}

// KindOf returns the outermost kind in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Advice returns an operator hint for a failed video.
func Advice(err error) string {
	switch KindOf(err) {
	case KindConfig:
		return "check the environment variables or settings file"
	case KindProbe:
		return "check that ffprobe is installed and the video is readable"
	case KindExtract:
		return "the subtitle track may be image based or damaged"
	case KindFormat:
		return "the extracted subtitle is not valid SRT"
	case KindQuotaExceeded:
		return "the translation quota is exhausted; the video will not be retried until restart"
	case KindTranslation:
		return "check the API key, model name and network connectivity"
	case KindOutput:
		return "check that the video directory is writable"
	default:
		return "see the error detail"
	}
}
