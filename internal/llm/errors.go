package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RateLimitError is a 429 from the provider.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited: %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// UnavailableError is a transport failure or a 5xx from the provider.
type UnavailableError struct {
	Provider string
	Err      error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return e.Provider + ": unavailable"
	}
	return fmt.Sprintf("%s: unavailable: %v", e.Provider, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// OutputError is a reply that is not valid JSON for the requested schema,
// or carries no content at all.
type OutputError struct {
	Output json.RawMessage
	Err    error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("unusable model output: %v", e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// ErrTruncated is returned when the reply hit MaxTokens.
var ErrTruncated = errors.New("model output truncated at max tokens")

// fromStatus classifies an SDK error that carried an HTTP status. Client
// errors other than 429 are returned unchanged and are not retried.
func fromStatus(provider string, status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &RateLimitError{Provider: provider, Err: err}
	case status >= 500 || status == 0:
		return &UnavailableError{Provider: provider, Err: err}
	}
	return fmt.Errorf("%s: %w", provider, err)
}

// Kind names the request log error kind of err: "network", "validation",
// "timeout" or "".
func Kind(err error) string {
	var (
		rl  *RateLimitError
		un  *UnavailableError
		out *OutputError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &rl), errors.As(err, &un):
		return "network"
	case errors.As(err, &out), errors.Is(err, ErrTruncated):
		return "validation"
	}
	return ""
}
