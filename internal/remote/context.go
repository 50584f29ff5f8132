package remote

import "context"

type contextKey string

const (
	attemptKey contextKey = "remote_attempt"
	purposeKey contextKey = "remote_purpose"
)

func withAttempt(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, attemptKey, n)
}

func attemptFrom(ctx context.Context) int {
	if v, ok := ctx.Value(attemptKey).(int); ok {
		return v
	}
	return 1
}

// WithPurpose labels the calls made with ctx in the request log, e.g. "quiz"
// or "block-edit".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return ""
}
