// Package llm asks a hosted language model for small structured outputs,
// such as example sentences, through Anthropic, OpenAI, OpenRouter or Gemini.
package llm

import (
	"context"
	"encoding/json"
)

// Provider is one model endpoint.
type Provider interface {
	// Complete sends a single-turn prompt. When the prompt carries a
	// Schema the returned JSON has been validated against it.
	Complete(ctx context.Context, p Prompt) (*Completion, error)

	// ModelID is the model the provider is configured with.
	ModelID() string
}

// Prompt is a system instruction plus one user message.
type Prompt struct {
	System      string
	User        string
	Schema      *Schema
	MaxTokens   int
	Temperature float64 // 0 leaves the provider default
}

// Schema is a named JSON Schema requested as structured output.
type Schema struct {
	Name        string // kebab-case, e.g. "word-example"
	Description string
	Definition  map[string]any
}

// Completion is a model reply.
type Completion struct {
	// JSON is the structured output, or the raw text when no schema was
	// requested.
	JSON json.RawMessage

	Model        string
	InputTokens  int
	OutputTokens int
}

type purposeKey struct{}

// WithPurpose labels the requests made with ctx in the request log.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return "unknown"
}

// resolveModel maps a friendly name to a model id. Unknown names are used
// as ids.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
