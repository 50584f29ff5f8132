package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/geogem/internal/store"
)

// ErrNotConfigured is returned by NewProvider when no provider is selected.
var ErrNotConfigured = errors.New("no LLM provider configured")

// NewProvider builds the configured provider wrapped as
// caller → retry → logging → provider. eventRepo may be nil to skip logging.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = newAnthropic(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = newOpenAI(cfg.OpenAI)
	case ProviderOpenRouter:
		base, err = newOpenRouter(cfg.OpenRouter)
	case ProviderGemini:
		base, err = newGemini(ctx, cfg.Gemini)
	case ProviderMock:
		base = NewFake()
	case "":
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := base
	if eventRepo != nil {
		p = WithLogging(p, eventRepo)
	}
	return WithRetry(p, cfg.Retry), nil
}
