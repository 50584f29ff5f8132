package remote

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/geogem/internal/quiz"
)

// DeckCard is one question as served by the quiz endpoints.
type DeckCard struct {
	ID              string   `json:"id"`
	Prompt          string   `json:"prompt"`
	Transliteration string   `json:"transliteration,omitempty"`
	Translation     string   `json:"translation,omitempty"`
	Example         string   `json:"example,omitempty"`
	Options         []string `json:"options,omitempty"`
}

// Deck is the ordered question list of one quiz attempt.
type Deck struct {
	LearningBlock string     `json:"learning_block"`
	Mode          string     `json:"mode"`
	Cards         []DeckCard `json:"cards"`
}

// QuizCards converts the deck into controller cards. Learn cards carry the
// translation as their single option so it can be shown.
func (d Deck) QuizCards() []quiz.Card {
	cards := make([]quiz.Card, len(d.Cards))
	for i, dc := range d.Cards {
		c := quiz.Card{
			ID:              dc.ID,
			Prompt:          dc.Prompt,
			Transliteration: dc.Transliteration,
			Example:         dc.Example,
		}
		values := dc.Options
		if len(values) == 0 && dc.Translation != "" {
			values = []string{dc.Translation}
		}
		for _, v := range values {
			c.Options = append(c.Options, quiz.Option{Value: v})
		}
		cards[i] = c
	}
	return cards
}

// FieldEdit is the server's confirmation of one inline word edit.
type FieldEdit struct {
	WordID       string `json:"-"`
	Success      bool   `json:"success"`
	ChangedField string `json:"changed_field"`
	OldValue     string `json:"old_value"`
	NewValue     string `json:"new_value"`
	UpdatedAt    string `json:"updated_at"`
}

// LogLine renders the edit the way the block editor's change log shows it.
func (e FieldEdit) LogLine() string {
	return fmt.Sprintf("id %s: column %q. %q -> %q at %s", e.WordID, e.ChangedField, e.OldValue, e.NewValue, e.UpdatedAt)
}

// BlockSummary is one entry of the block list.
type BlockSummary struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	NumWords    int    `json:"num_words"`
	NumLearned  int    `json:"num_learned"`
}

// BlockStats is the mastery summary of one block.
type BlockStats struct {
	LearningBlock string  `json:"learning_block"`
	NumWords      int     `json:"num_words"`
	NumLearned    int     `json:"num_learned"`
	MasteryLevel  float64 `json:"mastery_level"`
	Levels        []int   `json:"levels"`
	Experience    int     `json:"experience"`
	ProfileLevel  int     `json:"profile_level"`
}

// flexID accepts a JSON number, string or null.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*f = ""
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = flexID(v)
	default:
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("id %s is not a number", s)
		}
		*f = flexID(s)
	}
	return nil
}
