package examples

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/geogem/internal/llm"
	"github.com/abhisek/geogem/internal/quiz"
)

func TestExample_FormatsAndCaches(t *testing.T) {
	fake := llm.NewFake(llm.FakeReply{
		JSON: json.RawMessage(`{"sentence": "ძაღლი ეზოშია.", "translation": "The dog is in the yard."}`),
	})
	svc := NewService(fake, DefaultConfig())
	card := quiz.Card{ID: "1", Prompt: "ძაღლი", Transliteration: "dzaghli"}

	got, err := svc.Example(context.Background(), card)
	require.NoError(t, err)
	assert.Equal(t, "ძაღლი ეზოშია. (The dog is in the yard.)", got)

	again, err := svc.Example(context.Background(), card)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	prompts := fake.Prompts()
	require.Len(t, prompts, 1)
	assert.Equal(t, ExampleSchema, prompts[0].Schema)
	assert.True(t, strings.Contains(prompts[0].User, "dzaghli"))
}

func TestExample_ProviderError(t *testing.T) {
	fake := llm.NewFake(llm.FakeReply{Err: &llm.UnavailableError{Provider: "fake", Err: errors.New("down")}})
	svc := NewService(fake, DefaultConfig())

	_, err := svc.Example(context.Background(), quiz.Card{Prompt: "კატა"})
	var unavail *llm.UnavailableError
	assert.ErrorAs(t, err, &unavail)
}

func TestExample_EmptyInputs(t *testing.T) {
	fake := llm.NewFake(llm.FakeReply{JSON: json.RawMessage(`{"sentence": " ", "translation": ""}`)})
	svc := NewService(fake, DefaultConfig())

	_, err := svc.Example(context.Background(), quiz.Card{})
	assert.ErrorIs(t, err, ErrNoPrompt)

	_, err = svc.Example(context.Background(), quiz.Card{Prompt: "მელა"})
	assert.Error(t, err)
}
