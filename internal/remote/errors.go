package remote

import (
	"errors"
	"fmt"
	"time"
)

// NetworkError indicates the server could not be reached or answered with a
// 5xx status. Retrying may help.
type NetworkError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: server error %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError indicates the server rejected the request (4xx) or sent a
// body that does not match the expected shape. Retrying will not help.
type ValidationError struct {
	Op         string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *ValidationError) Error() string {
	if e.StatusCode >= 400 {
		return fmt.Sprintf("%s: rejected with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: invalid response: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// TimeoutError indicates the round trip did not finish in time.
type TimeoutError struct {
	Op    string
	After time.Duration // 0 when unknown
	Err   error
}

func (e *TimeoutError) Error() string {
	if e.After > 0 {
		return fmt.Sprintf("%s: timed out after %s", e.Op, e.After)
	}
	return fmt.Sprintf("%s: timed out", e.Op)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Error kinds recorded in the request log.
const (
	KindNetwork    = "network"
	KindValidation = "validation"
	KindTimeout    = "timeout"
)

// Kind classifies err into one of the Kind constants, or "" for errors
// outside the taxonomy.
func Kind(err error) string {
	var (
		netErr *NetworkError
		valErr *ValidationError
		toErr  *TimeoutError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &toErr):
		return KindTimeout
	case errors.As(err, &netErr):
		return KindNetwork
	case errors.As(err, &valErr):
		return KindValidation
	}
	return ""
}

// IsNotFound reports whether err is a 404 rejection.
func IsNotFound(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr) && valErr.StatusCode == 404
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	switch Kind(err) {
	case KindNetwork, KindTimeout:
		return true
	}
	return false
}
