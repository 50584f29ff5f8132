package quiz

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Mode is the quiz variant. The string values are the wire tags the server uses.
type Mode string

const (
	ModeLearn          Mode = "learn"
	ModeMultipleChoice Mode = "multiple_choice"
	ModeReview         Mode = "review"
)

// ParseMode maps a CLI or wire name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "learn":
		return ModeLearn, nil
	case "multiple_choice", "choice", "mc":
		return ModeMultipleChoice, nil
	case "review":
		return ModeReview, nil
	}
	return "", fmt.Errorf("unknown quiz mode %q", s)
}

// Scored reports whether answers in this mode are right or wrong.
func (m Mode) Scored() bool {
	return m == ModeMultipleChoice || m == ModeReview
}

// Phase is the controller's position in the session state machine.
type Phase int

const (
	PhasePresenting Phase = iota // a card is shown and accepts input
	PhaseSubmitting              // a round trip is in flight
	PhaseFinalized               // report sent, no further input
)

func (p Phase) String() string {
	switch p {
	case PhasePresenting:
		return "presenting"
	case PhaseSubmitting:
		return "submitting"
	case PhaseFinalized:
		return "finalized"
	}
	return "unknown"
}

// Mark is the visual verdict attached to an answer control.
type Mark int

const (
	MarkNone Mark = iota
	MarkCorrect
	MarkIncorrect
)

// Option is one candidate answer control on a card.
type Option struct {
	Value    string
	Mark     Mark
	Disabled bool
}

// Card is one question's presentation unit.
type Card struct {
	ID              string
	Ordinal         int
	Prompt          string
	Transliteration string
	Options         []Option
	Example         string

	Visible bool
	Locked  bool // every control disabled (answered correctly or learned)
	Pending bool // a submission for this card is in flight
}

func (c *Card) option(value string) *Option {
	for i := range c.Options {
		if c.Options[i].Value == value {
			return &c.Options[i]
		}
	}
	return nil
}

func (c Card) clone() Card {
	opts := make([]Option, len(c.Options))
	copy(opts, c.Options)
	c.Options = opts
	return c
}

// ScoreNotApplicable is reported as the score of a learn-mode session.
const ScoreNotApplicable = -1

// ErrEmptyDeck is returned when a session is created without cards.
var ErrEmptyDeck = errors.New("quiz has no question cards")

// SessionState is the mutable record of one quiz attempt.
type SessionState struct {
	// SessionID identifies this attempt in the local history.
	SessionID string

	// LearningBlock is the slug of the word block being practised.
	LearningBlock string

	Mode  Mode
	Cards []Card

	// Cursor is the 1-based ordinal of the visible card.
	Cursor int

	// Incorrect holds the ids of wrongly answered questions, without duplicates.
	Incorrect []string

	// Learned holds the ids returned by successful "mark as learned" calls.
	Learned []string

	// Score is Total() minus len(Incorrect), recomputed after every outcome.
	Score int

	Phase Phase
}

// NewSessionState creates the state for a fresh attempt: cursor on the first
// card, empty sets and a full score.
func NewSessionState(block string, mode Mode, cards []Card) (*SessionState, error) {
	if len(cards) == 0 {
		return nil, ErrEmptyDeck
	}

	deck := make([]Card, len(cards))
	for i, c := range cards {
		c = c.clone()
		c.Ordinal = i + 1
		c.Visible = i == 0
		c.Locked = false
		c.Pending = false
		deck[i] = c
	}

	s := &SessionState{
		SessionID:     uuid.New().String(),
		LearningBlock: block,
		Mode:          mode,
		Cards:         deck,
		Cursor:        1,
		Phase:         PhasePresenting,
	}
	s.Recompute()
	return s, nil
}

// Total is the number of question cards in the attempt.
func (s *SessionState) Total() int {
	return len(s.Cards)
}

// Current returns the card under the cursor.
func (s *SessionState) Current() *Card {
	if s.Cursor < 1 || s.Cursor > len(s.Cards) {
		return nil
	}
	return &s.Cards[s.Cursor-1]
}

// Card returns the card with the given id, preferring the one under the cursor
// when ids repeat.
func (s *SessionState) Card(id string) *Card {
	if cur := s.Current(); cur != nil && cur.ID == id {
		return cur
	}
	for i := range s.Cards {
		if s.Cards[i].ID == id {
			return &s.Cards[i]
		}
	}
	return nil
}

// MarkIncorrect inserts id into the incorrect set. It returns false when the
// id was already present.
func (s *SessionState) MarkIncorrect(id string) bool {
	if contains(s.Incorrect, id) {
		return false
	}
	s.Incorrect = append(s.Incorrect, id)
	return true
}

// AddLearned inserts id into the learned set. It returns false when the id
// was already present.
func (s *SessionState) AddLearned(id string) bool {
	if contains(s.Learned, id) {
		return false
	}
	s.Learned = append(s.Learned, id)
	return true
}

// Recompute derives the score from the incorrect set.
func (s *SessionState) Recompute() int {
	s.Score = s.Total() - len(s.Incorrect)
	if s.Score < 0 {
		s.Score = 0
	}
	return s.Score
}

// VisibleCount returns how many cards are currently shown.
func (s *SessionState) VisibleCount() int {
	n := 0
	for _, c := range s.Cards {
		if c.Visible {
			n++
		}
	}
	return n
}

// PresentedIDs returns the card ids in card order, first occurrence wins.
func (s *SessionState) PresentedIDs() []string {
	ids := make([]string, 0, len(s.Cards))
	for _, c := range s.Cards {
		if !contains(ids, c.ID) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Clone returns a deep copy safe to hand out of the controller.
func (s *SessionState) Clone() SessionState {
	out := *s
	out.Cards = make([]Card, len(s.Cards))
	for i, c := range s.Cards {
		out.Cards[i] = c.clone()
	}
	out.Incorrect = append([]string(nil), s.Incorrect...)
	out.Learned = append([]string(nil), s.Learned...)
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
