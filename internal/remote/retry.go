package remote

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64

	// AttemptTimeout bounds each attempt on its own so a hung request leaves
	// time for the next one. Zero leaves attempts bounded by ctx only.
	AttemptTimeout time.Duration
}

// Budget splits an operation deadline across the attempts, after reserving
// the worst-case backoff between them.
func (c RetryConfig) Budget(total time.Duration) time.Duration {
	n := max(c.MaxAttempts, 1)
	var waits time.Duration
	for i := range n - 1 {
		w := float64(c.InitialWait) * math.Pow(c.Multiplier, float64(i))
		waits += time.Duration(min(w, float64(c.MaxWait)) * 1.2)
	}
	if left := total - waits; left > 0 {
		return left / time.Duration(n)
	}
	return total / time.Duration(n)
}

// DefaultRetryConfig retries twice with a short backoff; quiz round trips
// are interactive.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 300 * time.Millisecond,
		MaxWait:     2 * time.Second,
		Multiplier:  2.0,
	}
}

// RetryDoer is a decorator that retries network and timeout errors with
// exponential backoff and jitter. Validation errors are returned at once.
type RetryDoer struct {
	inner  Doer
	config RetryConfig
}

// WithRetry wraps a Doer with retry logic.
func WithRetry(d Doer, cfg RetryConfig) Doer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryDoer{inner: d, config: cfg}
}

func (r *RetryDoer) Do(ctx context.Context, call Call) (*Result, error) {
	var (
		lastRes *Result
		lastErr error
	)

	for attempt := range r.config.MaxAttempts {
		res, err := r.attempt(ctx, attempt+1, call)
		if err == nil {
			return res, nil
		}
		lastRes, lastErr = res, err

		if ctx.Err() != nil || !Retryable(err) {
			return res, err
		}

		// Last attempt: don't sleep, just return the error.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return res, err
		case <-time.After(r.backoff(attempt)):
		}
	}

	return lastRes, lastErr
}

func (r *RetryDoer) attempt(ctx context.Context, n int, call Call) (*Result, error) {
	ctx = withAttempt(ctx, n)
	if r.config.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.AttemptTimeout)
		defer cancel()
	}
	return r.inner.Do(ctx, call)
}

// backoff computes the wait duration for the given attempt.
func (r *RetryDoer) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
