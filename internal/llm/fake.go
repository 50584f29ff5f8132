package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// FakeReply is one scripted answer of a Fake.
type FakeReply struct {
	JSON         json.RawMessage
	InputTokens  int
	OutputTokens int
	Err          error
}

// Fake is a scripted Provider for tests and the "mock" provider setting.
// Replies are consumed in order; once they run out every call fails with
// an UnavailableError.
type Fake struct {
	mu      sync.Mutex
	replies []FakeReply
	prompts []Prompt
}

// NewFake returns a Fake that answers with replies in order.
func NewFake(replies ...FakeReply) *Fake {
	return &Fake{replies: replies}
}

func (f *Fake) Complete(_ context.Context, p Prompt) (*Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, p)
	if len(f.replies) == 0 {
		return nil, &UnavailableError{Provider: ProviderMock}
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	return &Completion{
		JSON:         r.JSON,
		Model:        ProviderMock,
		InputTokens:  r.InputTokens,
		OutputTokens: r.OutputTokens,
	}, nil
}

func (f *Fake) ModelID() string { return ProviderMock }

// Prompts returns the prompts received so far.
func (f *Fake) Prompts() []Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Prompt(nil), f.prompts...)
}
