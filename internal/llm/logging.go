package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/geogem/internal/store"
)

// LoggingProvider is a decorator that records every LLM request in the
// shared request log with target "llm".
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
}

// WithLogging wraps a Provider with event logging.
func WithLogging(p Provider, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, eventRepo: repo}
}

func (l *LoggingProvider) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	start := time.Now()
	c, err := l.inner.Complete(ctx, p)

	data := store.RequestEventData{
		Target:      "llm",
		Operation:   l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Attempts:    1,
		Success:     err == nil,
		ErrorKind:   Kind(err),
		RequestBody: formatPrompt(p),
	}
	if c != nil {
		data.Operation = c.Model
		data.InputTokens = c.InputTokens
		data.OutputTokens = c.OutputTokens
		data.ResponseBody = string(c.JSON)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	if logErr := l.eventRepo.AppendRequest(context.WithoutCancel(ctx), data); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log LLM request event: %v\n", logErr)
	}
	return c, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// formatPrompt renders p for `geogem requests view`.
func formatPrompt(p Prompt) string {
	var b strings.Builder
	if p.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", p.System)
	}
	fmt.Fprintf(&b, "[user]\n%s\n", p.User)
	if p.Schema != nil {
		if def, err := json.Marshal(p.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "\n[schema: %s]\n%s\n", p.Schema.Name, def)
		}
	}
	return b.String()
}
