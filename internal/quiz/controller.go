package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Sentinel errors returned by Controller operations.
var (
	ErrFinalized         = errors.New("quiz already finalized")
	ErrSubmissionPending = errors.New("a submission for this card is already pending")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrControlDisabled   = errors.New("answer control is disabled")
	ErrCardLocked        = errors.New("card is locked")
	ErrWrongMode         = errors.New("operation not available in this quiz mode")
	ErrBusy              = errors.New("another request is in flight")
)

// DefaultTimeout bounds a single collaborator round trip.
const DefaultTimeout = 10 * time.Second

// AnswerSubmission is the immutable pair sent to the validator.
type AnswerSubmission struct {
	Mode       Mode
	QuestionID string
	Value      string
}

// Verdict is the validator's answer.
type Verdict struct {
	Correct bool
	Example string
}

// LearnRequest asks the server to add a word to the learner's vocabulary.
type LearnRequest struct {
	LearningBlock string
	QuestionID    string
	IsLast        bool
}

// LearnResult is the server's reply to a LearnRequest. LearnedID is empty for
// anonymous learners.
type LearnResult struct {
	Created   bool
	LearnedID string
	IsLast    bool
}

// Validator checks one answer.
type Validator interface {
	CheckAnswer(ctx context.Context, sub AnswerSubmission) (Verdict, error)
}

// Learner records a word as learned.
type Learner interface {
	AddToLearned(ctx context.Context, req LearnRequest) (LearnResult, error)
}

// ResultsSink accepts the final report.
type ResultsSink interface {
	SubmitResults(ctx context.Context, r Report) error
}

// ExampleSource supplies a usage example when the validator returned none.
type ExampleSource interface {
	Example(ctx context.Context, card Card) (string, error)
}

// Point is a screen position captured when the learner submitted.
type Point struct {
	X, Y int
}

// Direction is a cursor move.
type Direction int

const (
	Next     Direction = 1
	Previous Direction = -1
)

// Outcome describes the effect of one successful round trip.
type Outcome struct {
	QuestionID string
	Value      string
	Correct    bool
	Example    string
	// NewlyIncorrect is false when a repeated wrong answer hit an id already
	// in the incorrect set.
	NewlyIncorrect bool
	Score          int
	Total          int
}

// LearnOutcome is returned by RecordLearned.
type LearnOutcome struct {
	LearnResult
	QuestionID string
	// Added is false when the learned id was already recorded or absent.
	Added bool
	// Report is set when the server flagged the last card and the session was
	// finalized as a consequence.
	Report *Report
}

// Options configures a Controller. Validator and Sink are required; the
// others may be nil.
type Options struct {
	Validator Validator
	Learner   Learner
	Sink      ResultsSink
	Renderer  Renderer
	Examples  ExampleSource
	Timeout   time.Duration
	Now       func() time.Time
}

// Controller drives one quiz attempt. Its methods may be called from
// background commands; collaborator calls run without holding the lock.
type Controller struct {
	mu    sync.Mutex
	state *SessionState

	validator Validator
	learner   Learner
	sink      ResultsSink
	renderer  Renderer
	examples  ExampleSource
	timeout   time.Duration
	now       func() time.Time
}

// NewController wraps state. The first card is announced to the renderer.
func NewController(state *SessionState, opts Options) *Controller {
	c := &Controller{
		state:     state,
		validator: opts.Validator,
		learner:   opts.Learner,
		sink:      opts.Sink,
		renderer:  opts.Renderer,
		examples:  opts.Examples,
		timeout:   opts.Timeout,
		now:       opts.Now,
	}
	if c.renderer == nil {
		c.renderer = NopRenderer{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.now == nil {
		c.now = time.Now
	}
	if cur := state.Current(); cur != nil {
		c.renderer.ShowCard(cur.clone())
	}
	c.renderer.Score(state.Score, state.Total())
	return c
}

// State returns a snapshot of the session.
func (c *Controller) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Cursor returns the 1-based position of the visible card.
func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Cursor
}

// Score returns the current derived score.
func (c *Controller) Score() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Score
}

// Phase returns the state machine position.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase
}

// Visible returns a copy of the card under the cursor.
func (c *Controller) Visible() Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur := c.state.Current(); cur != nil {
		return cur.clone()
	}
	return Card{}
}

func (c *Controller) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// SubmitAnswer validates value for the question. The card is disabled before
// the validator is called and re-enabled when the call fails, in which case
// the session is left unchanged and the error is returned.
func (c *Controller) SubmitAnswer(ctx context.Context, questionID, value string, anchor Point) (Outcome, error) {
	c.mu.Lock()
	card, err := c.beginSubmit(questionID, value)
	if err != nil {
		c.mu.Unlock()
		return Outcome{}, err
	}
	sub := AnswerSubmission{Mode: c.state.Mode, QuestionID: questionID, Value: value}
	snapshot := card.clone()
	c.mu.Unlock()

	c.renderer.LockCard(questionID)

	rctx, cancel := c.withTimeout(ctx)
	verdict, err := c.validator.CheckAnswer(rctx, sub)
	cancel()

	if err != nil {
		c.mu.Lock()
		c.abortSubmit(questionID)
		restored := c.state.Card(questionID).clone()
		c.mu.Unlock()

		c.renderer.ShowCard(restored)
		c.renderer.Notice(err)
		return Outcome{}, fmt.Errorf("check answer %s: %w", questionID, err)
	}

	// the example source applies its own deadline
	var exErr error
	if verdict.Correct && verdict.Example == "" && c.examples != nil {
		var ex string
		if ex, exErr = c.examples.Example(ctx, snapshot); exErr == nil {
			verdict.Example = ex
		}
	}

	c.mu.Lock()
	out := c.applyVerdict(questionID, value, verdict)
	c.mu.Unlock()

	if out.Correct {
		c.renderer.MarkOption(questionID, value, MarkCorrect)
		c.renderer.PlaySuccess()
		c.renderer.Burst(anchor, "+1")
		if out.Example != "" {
			c.renderer.ShowExample(questionID, out.Example)
		}
		if exErr != nil {
			c.renderer.Notice(fmt.Errorf("no example sentence: %w", exErr))
		}
	} else {
		c.renderer.MarkOption(questionID, value, MarkIncorrect)
		c.renderer.ShowCard(c.Visible())
	}
	c.renderer.Score(out.Score, out.Total)
	return out, nil
}

// beginSubmit checks preconditions and marks the card pending. Caller holds mu.
func (c *Controller) beginSubmit(questionID, value string) (*Card, error) {
	switch c.state.Phase {
	case PhaseFinalized:
		return nil, ErrFinalized
	case PhaseSubmitting:
		if card := c.state.Card(questionID); card != nil && card.Pending {
			return nil, ErrSubmissionPending
		}
		return nil, ErrBusy
	}
	if !c.state.Mode.Scored() {
		return nil, ErrWrongMode
	}
	card := c.state.Card(questionID)
	if card == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if card.Locked {
		return nil, ErrCardLocked
	}
	opt := card.option(value)
	if opt == nil && len(card.Options) > 0 {
		return nil, fmt.Errorf("%w: %q is not an option", ErrUnknownQuestion, value)
	}
	if opt != nil && opt.Disabled {
		return nil, ErrControlDisabled
	}
	card.Pending = true
	c.state.Phase = PhaseSubmitting
	return card, nil
}

// abortSubmit returns the card to its pre-submission state. Caller holds mu.
func (c *Controller) abortSubmit(questionID string) {
	if card := c.state.Card(questionID); card != nil {
		card.Pending = false
	}
	c.state.Phase = PhasePresenting
}

// applyVerdict records the outcome of a successful round trip. Caller holds mu.
func (c *Controller) applyVerdict(questionID, value string, v Verdict) Outcome {
	card := c.state.Card(questionID)
	card.Pending = false
	c.state.Phase = PhasePresenting

	out := Outcome{QuestionID: questionID, Value: value, Correct: v.Correct}
	if v.Correct {
		if opt := card.option(value); opt != nil {
			opt.Mark = MarkCorrect
		}
		for i := range card.Options {
			card.Options[i].Disabled = true
		}
		card.Locked = true
		card.Example = v.Example
		out.Example = v.Example
	} else {
		if opt := card.option(value); opt != nil {
			opt.Mark = MarkIncorrect
			opt.Disabled = true
		}
		out.NewlyIncorrect = c.state.MarkIncorrect(questionID)
	}
	out.Score = c.state.Recompute()
	out.Total = c.state.Total()
	return out
}

// Advance hides the visible card and reveals its neighbour. Moves past either
// end are ignored and report false.
func (c *Controller) Advance(dir Direction) bool {
	c.mu.Lock()
	if c.state.Phase != PhasePresenting {
		c.mu.Unlock()
		return false
	}
	target := c.state.Cursor + int(dir)
	if dir == 0 || target < 1 || target > c.state.Total() {
		c.mu.Unlock()
		return false
	}
	prev := c.state.Current()
	prev.Visible = false
	hidden := prev.clone()
	c.state.Cursor = target
	next := c.state.Current()
	next.Visible = true
	shown := next.clone()
	c.mu.Unlock()

	c.renderer.HideCard(hidden)
	c.renderer.ShowCard(shown)
	return true
}

// RecordLearned marks the question's word as learned. When the server flags
// the last card the session is finalized in the same call.
func (c *Controller) RecordLearned(ctx context.Context, questionID string) (LearnOutcome, error) {
	c.mu.Lock()
	switch {
	case c.state.Phase == PhaseFinalized:
		c.mu.Unlock()
		return LearnOutcome{}, ErrFinalized
	case c.state.Phase == PhaseSubmitting:
		c.mu.Unlock()
		return LearnOutcome{}, ErrBusy
	case c.state.Mode != ModeLearn:
		c.mu.Unlock()
		return LearnOutcome{}, ErrWrongMode
	case c.learner == nil:
		c.mu.Unlock()
		return LearnOutcome{}, errors.New("no learner configured")
	}
	card := c.state.Card(questionID)
	if card == nil {
		c.mu.Unlock()
		return LearnOutcome{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if card.Locked {
		c.mu.Unlock()
		return LearnOutcome{}, ErrCardLocked
	}
	card.Pending = true
	c.state.Phase = PhaseSubmitting
	req := LearnRequest{
		LearningBlock: c.state.LearningBlock,
		QuestionID:    questionID,
		IsLast:        card.Ordinal == c.state.Total(),
	}
	c.mu.Unlock()

	c.renderer.LockCard(questionID)

	rctx, cancel := c.withTimeout(ctx)
	res, err := c.learner.AddToLearned(rctx, req)
	cancel()

	c.mu.Lock()
	if err != nil {
		c.abortSubmit(questionID)
		restored := c.state.Card(questionID).clone()
		c.mu.Unlock()
		c.renderer.ShowCard(restored)
		c.renderer.Notice(err)
		return LearnOutcome{}, fmt.Errorf("add to learned %s: %w", questionID, err)
	}
	card = c.state.Card(questionID)
	card.Pending = false
	card.Locked = true
	c.state.Phase = PhasePresenting
	out := LearnOutcome{LearnResult: res, QuestionID: questionID}
	if res.LearnedID != "" {
		out.Added = c.state.AddLearned(res.LearnedID)
	}
	c.mu.Unlock()

	if !res.IsLast {
		return out, nil
	}
	report, err := c.Finalize(ctx)
	if err != nil {
		return out, err
	}
	out.Report = &report
	return out, nil
}

// DeliveryError is returned by Finalize when the results sink failed. Report
// is what was sent, so it can be kept locally until a retry succeeds.
type DeliveryError struct {
	Report Report
	Err    error
}

func (e *DeliveryError) Error() string {
	return "submit results: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Finalize sends the report once. A failed send leaves the session open so
// the learner can retry.
func (c *Controller) Finalize(ctx context.Context) (Report, error) {
	c.mu.Lock()
	switch c.state.Phase {
	case PhaseFinalized:
		c.mu.Unlock()
		return Report{}, ErrFinalized
	case PhaseSubmitting:
		c.mu.Unlock()
		return Report{}, ErrBusy
	}
	report := BuildReport(c.state, c.now())
	c.state.Phase = PhaseSubmitting
	c.mu.Unlock()

	rctx, cancel := c.withTimeout(ctx)
	err := c.sink.SubmitResults(rctx, report)
	cancel()

	c.mu.Lock()
	if err != nil {
		c.state.Phase = PhasePresenting
		c.mu.Unlock()
		c.renderer.Notice(err)
		return Report{}, &DeliveryError{Report: report, Err: err}
	}
	c.state.Phase = PhaseFinalized
	c.mu.Unlock()

	c.renderer.Finished(report)
	return report, nil
}
