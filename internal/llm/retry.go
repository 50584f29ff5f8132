package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries rate limits, outages and one unusable reply with
// exponential backoff and jitter.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p with retries.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	var lastErr error
	badOutputs := 0

	for attempt := range max(r.config.MaxAttempts, 1) {
		c, err := r.inner.Complete(ctx, p)
		if err == nil {
			return c, nil
		}
		lastErr = err

		var out *OutputError
		if errors.As(err, &out) {
			badOutputs++
		}
		if !retryable(err) || badOutputs > 1 {
			return nil, err
		}
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.backoff(attempt, err)):
		}
	}
	return nil, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTruncated) {
		return false
	}
	var (
		rl  *RateLimitError
		un  *UnavailableError
		out *OutputError
	)
	return errors.As(err, &rl) || errors.As(err, &un) || errors.As(err, &out)
}

func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	wait = math.Min(wait, float64(r.config.MaxWait))
	// ±20% jitter
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(wait, 0))
}
