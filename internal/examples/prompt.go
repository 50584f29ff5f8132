package examples

import (
	"fmt"
	"strings"

	"github.com/abhisek/geogem/internal/llm"
	"github.com/abhisek/geogem/internal/quiz"
)

const systemPrompt = `You write short example sentences for learners of Georgian. Sentences use everyday vocabulary, are at most eight words long, and are written in Mkhedruli script.`

// ExampleSchema is the structured output requested from the provider.
var ExampleSchema = &llm.Schema{
	Name:        "word-example",
	Description: "One Georgian example sentence using the given word, with its English translation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sentence": map[string]any{
				"type":        "string",
				"description": "A short Georgian sentence that contains the word",
			},
			"translation": map[string]any{
				"type":        "string",
				"description": "English translation of the sentence",
			},
		},
		"required":             []any{"sentence", "translation"},
		"additionalProperties": false,
	},
}

func buildUserMessage(card quiz.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Word: %s\n", card.Prompt)
	if card.Transliteration != "" {
		fmt.Fprintf(&b, "Transliteration: %s\n", card.Transliteration)
	}
	b.WriteString("\nWrite one example sentence that uses this word in a natural, simple context.")
	return b.String()
}
