// Package examples generates example sentences for words the server has no
// example for.
package examples

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/geogem/internal/llm"
	"github.com/abhisek/geogem/internal/quiz"
)

// Config tunes example generation.
type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration // per example, retries included; 0 means none
}

// DefaultConfig returns the generation defaults.
func DefaultConfig() Config {
	return Config{MaxTokens: 256, Temperature: 0.7, Timeout: 15 * time.Second}
}

// ErrNoPrompt is returned for cards without a word to illustrate.
var ErrNoPrompt = errors.New("card has no word")

// Service implements quiz.ExampleSource on top of an LLM provider. Results
// are cached per word for the life of the service.
type Service struct {
	provider llm.Provider
	cfg      Config

	mu    sync.Mutex
	cache map[string]string
}

var _ quiz.ExampleSource = (*Service)(nil)

// NewService creates an example service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg, cache: make(map[string]string)}
}

type exampleOutput struct {
	Sentence    string `json:"sentence"`
	Translation string `json:"translation"`
}

// Example returns a short Georgian sentence using the card's word followed
// by its English translation in parentheses.
func (s *Service) Example(ctx context.Context, card quiz.Card) (string, error) {
	word := strings.TrimSpace(card.Prompt)
	if word == "" {
		return "", ErrNoPrompt
	}

	s.mu.Lock()
	cached, ok := s.cache[word]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	resp, err := s.provider.Complete(llm.WithPurpose(ctx, "example"), llm.Prompt{
		System:      systemPrompt,
		User:        buildUserMessage(card),
		Schema:      ExampleSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("example for %s: %w", word, err)
	}

	var out exampleOutput
	if err := json.Unmarshal(resp.JSON, &out); err != nil {
		return "", fmt.Errorf("parse example response: %w", err)
	}
	sentence := strings.TrimSpace(out.Sentence)
	if sentence == "" {
		return "", fmt.Errorf("example for %s: empty sentence", word)
	}

	example := sentence
	if t := strings.TrimSpace(out.Translation); t != "" {
		example = fmt.Sprintf("%s (%s)", sentence, t)
	}

	s.mu.Lock()
	s.cache[word] = example
	s.mu.Unlock()
	return example, nil
}
