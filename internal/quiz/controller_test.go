package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	mu      sync.Mutex
	answers map[string]string // question id -> correct value
	example string
	err     error
	calls   []AnswerSubmission
	block   chan struct{}
}

func (f *fakeValidator) CheckAnswer(ctx context.Context, sub AnswerSubmission) (Verdict, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sub)
	block := f.block
	err := f.err
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return Verdict{}, ctx.Err()
		}
	}
	if err != nil {
		return Verdict{}, err
	}
	ok := f.answers[sub.QuestionID] == sub.Value
	v := Verdict{Correct: ok}
	if ok {
		v.Example = f.example
	}
	return v, nil
}

type fakeLearner struct {
	mu   sync.Mutex
	reqs []LearnRequest
	err  error
	anon bool
	ids  map[string]string
}

func (f *fakeLearner) AddToLearned(_ context.Context, req LearnRequest) (LearnResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return LearnResult{}, f.err
	}
	res := LearnResult{Created: true, IsLast: req.IsLast}
	if !f.anon {
		res.LearnedID = "uw-" + req.QuestionID
		if id, ok := f.ids[req.QuestionID]; ok {
			res.LearnedID = id
		}
	}
	return res, nil
}

type fakeSink struct {
	mu      sync.Mutex
	reports []Report
	err     error
}

func (f *fakeSink) SubmitResults(_ context.Context, r Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reports = append(f.reports, r)
	return nil
}

type fixedExamples struct{ text string }

func (f fixedExamples) Example(context.Context, Card) (string, error) {
	return f.text, nil
}

func cards(ids ...string) []Card {
	out := make([]Card, len(ids))
	for i, id := range ids {
		out[i] = Card{
			ID:     id,
			Prompt: "word " + id,
			Options: []Option{
				{Value: "right-" + id},
				{Value: "wrong-a"},
				{Value: "wrong-b"},
			},
		}
	}
	return out
}

func answerKey(ids ...string) map[string]string {
	m := make(map[string]string, len(ids))
	for _, id := range ids {
		m[id] = "right-" + id
	}
	return m
}

type harness struct {
	ctrl      *Controller
	validator *fakeValidator
	learner   *fakeLearner
	sink      *fakeSink
	render    *RecordingRenderer
}

func newHarness(t *testing.T, mode Mode, ids ...string) *harness {
	t.Helper()
	state, err := NewSessionState("greetings", mode, cards(ids...))
	require.NoError(t, err)
	h := &harness{
		validator: &fakeValidator{answers: answerKey(ids...), example: "<span>ex</span>"},
		learner:   &fakeLearner{},
		sink:      &fakeSink{},
		render:    &RecordingRenderer{},
	}
	h.ctrl = NewController(state, Options{
		Validator: h.validator,
		Learner:   h.learner,
		Sink:      h.sink,
		Renderer:  h.render,
		Timeout:   time.Second,
	})
	return h
}

func TestNewSessionState_Initial(t *testing.T) {
	s, err := NewSessionState("b", ModeReview, cards("1", "2", "3"))
	require.NoError(t, err)

	assert.Equal(t, 1, s.Cursor)
	assert.Equal(t, 3, s.Score)
	assert.Empty(t, s.Incorrect)
	assert.Empty(t, s.Learned)
	assert.Equal(t, 1, s.VisibleCount())
	assert.True(t, s.Cards[0].Visible)
	assert.NotEmpty(t, s.SessionID)
	for i, c := range s.Cards {
		assert.Equal(t, i+1, c.Ordinal)
	}
}

func TestNewSessionState_Empty(t *testing.T) {
	_, err := NewSessionState("b", ModeReview, nil)
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"learn":           ModeLearn,
		"choice":          ModeMultipleChoice,
		"multiple_choice": ModeMultipleChoice,
		"review":          ModeReview,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("exam")
	assert.Error(t, err)
}

func TestSubmit_TwoCorrectOneWrong(t *testing.T) {
	h := newHarness(t, ModeMultipleChoice, "q1", "q2", "q3")
	ctx := context.Background()

	out, err := h.ctrl.SubmitAnswer(ctx, "q1", "right-q1", Point{X: 4, Y: 7})
	require.NoError(t, err)
	assert.True(t, out.Correct)
	require.True(t, h.ctrl.Advance(Next))

	_, err = h.ctrl.SubmitAnswer(ctx, "q2", "right-q2", Point{})
	require.NoError(t, err)
	require.True(t, h.ctrl.Advance(Next))

	out, err = h.ctrl.SubmitAnswer(ctx, "q3", "wrong-a", Point{})
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.True(t, out.NewlyIncorrect)

	report, err := h.ctrl.Finalize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Score)
	assert.Equal(t, 3, report.NumQuestions)
	assert.Equal(t, []string{"q1", "q2", "q3"}, report.QuestionIDs)
	assert.Equal(t, []string{"q3"}, h.ctrl.State().Incorrect)

	require.Len(t, h.sink.reports, 1)
	assert.Equal(t, "greetings", h.sink.reports[0].LearningBlock)
}

func TestSubmit_RepeatedWrongAnswerCountsOnce(t *testing.T) {
	h := newHarness(t, ModeMultipleChoice, "q1", "q2")
	ctx := context.Background()

	out, err := h.ctrl.SubmitAnswer(ctx, "q1", "wrong-a", Point{})
	require.NoError(t, err)
	assert.True(t, out.NewlyIncorrect)

	out, err = h.ctrl.SubmitAnswer(ctx, "q1", "wrong-b", Point{})
	require.NoError(t, err)
	assert.False(t, out.NewlyIncorrect)

	st := h.ctrl.State()
	assert.Equal(t, []string{"q1"}, st.Incorrect)
	assert.Equal(t, 1, st.Score)
}

func TestSubmit_DisabledOptionRejected(t *testing.T) {
	h := newHarness(t, ModeMultipleChoice, "q1")
	ctx := context.Background()

	_, err := h.ctrl.SubmitAnswer(ctx, "q1", "wrong-a", Point{})
	require.NoError(t, err)

	_, err = h.ctrl.SubmitAnswer(ctx, "q1", "wrong-a", Point{})
	assert.ErrorIs(t, err, ErrControlDisabled)
	assert.Len(t, h.validator.calls, 1)
}

func TestSubmit_CorrectLocksCard(t *testing.T) {
	h := newHarness(t, ModeReview, "q1")
	ctx := context.Background()

	out, err := h.ctrl.SubmitAnswer(ctx, "q1", "right-q1", Point{X: 2, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, "<span>ex</span>", out.Example)

	card := h.ctrl.Visible()
	assert.True(t, card.Locked)
	for _, o := range card.Options {
		assert.True(t, o.Disabled, o.Value)
	}
	assert.Equal(t, MarkCorrect, card.Options[0].Mark)

	_, err = h.ctrl.SubmitAnswer(ctx, "q1", "wrong-a", Point{})
	assert.ErrorIs(t, err, ErrCardLocked)
}

func TestSubmit_CorrectRendersCueBurstAndExample(t *testing.T) {
	h := newHarness(t, ModeReview, "q1")

	_, err := h.ctrl.SubmitAnswer(context.Background(), "q1", "right-q1", Point{X: 9, Y: 2})
	require.NoError(t, err)

	var burst *Effect
	for _, e := range h.render.Effects() {
		if e.Kind == "burst" {
			e := e
			burst = &e
		}
	}
	require.NotNil(t, burst)
	assert.Equal(t, Point{X: 9, Y: 2}, burst.At)
	assert.Equal(t, "+1", burst.Text)
	assert.Contains(t, h.render.Kinds(), "success")
	assert.Contains(t, h.render.Kinds(), "example")
}

func TestSubmit_ExampleFallback(t *testing.T) {
	h := newHarness(t, ModeReview, "q1")
	h.validator.example = ""
	h.ctrl.examples = fixedExamples{text: "Gamarjoba!"}

	out, err := h.ctrl.SubmitAnswer(context.Background(), "q1", "right-q1", Point{})
	require.NoError(t, err)
	assert.Equal(t, "Gamarjoba!", out.Example)
}

type failingExamples struct{ hadDeadline bool }

func (f *failingExamples) Example(ctx context.Context, _ Card) (string, error) {
	_, f.hadDeadline = ctx.Deadline()
	return "", errors.New("provider unavailable")
}

func TestSubmit_ExampleFailureIsANotice(t *testing.T) {
	h := newHarness(t, ModeReview, "q1")
	h.validator.example = ""
	ex := &failingExamples{}
	h.ctrl.examples = ex

	out, err := h.ctrl.SubmitAnswer(context.Background(), "q1", "right-q1", Point{})
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Empty(t, out.Example)
	assert.Equal(t, 1, out.Score)
	assert.Contains(t, h.render.Kinds(), EffectNotice)
	assert.False(t, ex.hadDeadline, "the example source sets its own deadline")
}

func TestSubmit_FailureLeavesStateUnchanged(t *testing.T) {
	h := newHarness(t, ModeMultipleChoice, "q1", "q2")
	h.validator.err = errors.New("connection refused")
	before := h.ctrl.State()

	_, err := h.ctrl.SubmitAnswer(context.Background(), "q1", "wrong-a", Point{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	after := h.ctrl.State()
	assert.Equal(t, before.Incorrect, after.Incorrect)
	assert.Equal(t, before.Score, after.Score)
	assert.Equal(t, before.Cursor, after.Cursor)
	assert.Equal(t, PhasePresenting, after.Phase)
	assert.False(t, after.Cards[0].Pending)
	for _, o := range after.Cards[0].Options {
		assert.False(t, o.Disabled)
		assert.Equal(t, MarkNone, o.Mark)
	}
	assert.Contains(t, h.render.Kinds(), "notice")

	// the card accepts input again
	h.validator.err = nil
	_, err = h.ctrl.SubmitAnswer(context.Background(), "q1", "right-q1", Point{})
	assert.NoError(t, err)
}

func TestSubmit_TimeoutRestoresCard(t *testing.T) {
	h := newHarness(t, ModeMultipleChoice, "q1")
	h.validator.block = make(chan struct{})
	h.ctrl.timeout = 20 * time.Millisecond

	_, err := h.ctrl.SubmitAnswer(context.Background(), "q1", "right-q1", Point{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, PhasePresenting, h.ctrl.Phase())
	assert.False(t, h.ctrl.Visible().Pending)
}

func TestSubmit_SecondClickWhilePendingRejected(t *testing.T) {
	h := newHarness(t, ModeMultipleChoice, "q1")
	h.validator.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := h.ctrl.SubmitAnswer(context.Background(), "q1", "wrong-a", Point{})
		done <- err
	}()

	require.Eventually(t, func() bool {
		return h.ctrl.Phase() == PhaseSubmitting
	}, time.Second, time.Millisecond)
	assert.True(t, h.ctrl.Visible().Pending)

	_, err := h.ctrl.SubmitAnswer(context.Background(), "q1", "wrong-b", Point{})
	assert.ErrorIs(t, err, ErrSubmissionPending)
	assert.False(t, h.ctrl.Advance(Next))

	close(h.validator.block)
	require.NoError(t, <-done)
	h.validator.mu.Lock()
	assert.Len(t, h.validator.calls, 1)
	h.validator.mu.Unlock()
}

func TestSubmit_UnknownQuestion(t *testing.T) {
	h := newHarness(t, ModeReview, "q1")
	_, err := h.ctrl.SubmitAnswer(context.Background(), "nope", "x", Point{})
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestSubmit_LearnModeRejected(t *testing.T) {
	h := newHarness(t, ModeLearn, "q1")
	_, err := h.ctrl.SubmitAnswer(context.Background(), "q1", "right-q1", Point{})
	assert.ErrorIs(t, err, ErrWrongMode)
}

func TestAdvance_Bounds(t *testing.T) {
	h := newHarness(t, ModeReview, "q1", "q2", "q3")

	assert.False(t, h.ctrl.Advance(Previous), "previous on first card")
	assert.Equal(t, 1, h.ctrl.Cursor())

	for want := 2; want <= 3; want++ {
		require.True(t, h.ctrl.Advance(Next))
		assert.Equal(t, want, h.ctrl.Cursor())
	}
	assert.False(t, h.ctrl.Advance(Next), "next on last card")
	assert.Equal(t, 3, h.ctrl.Cursor())

	require.True(t, h.ctrl.Advance(Previous))
	assert.Equal(t, 2, h.ctrl.Cursor())
}

func TestAdvance_ExactlyOneVisible(t *testing.T) {
	h := newHarness(t, ModeReview, "q1", "q2", "q3", "q4")
	moves := []Direction{Next, Next, Previous, Next, Next, Next, Previous, Previous, Previous, Previous}
	for i, d := range moves {
		h.ctrl.Advance(d)
		st := h.ctrl.State()
		require.Equal(t, 1, st.VisibleCount(), "after move %d", i)
		assert.True(t, st.Cards[st.Cursor-1].Visible)
		assert.GreaterOrEqual(t, st.Cursor, 1)
		assert.LessOrEqual(t, st.Cursor, 4)
	}
}

func TestAdvance_RendersHideThenShow(t *testing.T) {
	h := newHarness(t, ModeReview, "q1", "q2")
	h.render.Drain()

	h.ctrl.Advance(Next)
	effects := h.render.Drain()
	require.Len(t, effects, 2)
	assert.Equal(t, Effect{Kind: "hide", QuestionID: "q1"}, effects[0])
	assert.Equal(t, Effect{Kind: "show", QuestionID: "q2"}, effects[1])
}

func TestScore_NeverBelowZeroOrAboveTotal(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	h := newHarness(t, ModeMultipleChoice, ids...)
	ctx := context.Background()
	for i, id := range ids {
		_, err := h.ctrl.SubmitAnswer(ctx, id, "wrong-a", Point{})
		require.NoError(t, err)
		_, err = h.ctrl.SubmitAnswer(ctx, id, "wrong-b", Point{})
		require.NoError(t, err)
		score := h.ctrl.Score()
		assert.Equal(t, len(ids)-(i+1), score)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, len(ids))
		h.ctrl.Advance(Next)
	}
}

func TestRecordLearned_AllCards(t *testing.T) {
	ids := []string{"w1", "w2", "w3", "w4", "w5"}
	h := newHarness(t, ModeLearn, ids...)
	ctx := context.Background()

	var last LearnOutcome
	for i, id := range ids {
		out, err := h.ctrl.RecordLearned(ctx, id)
		require.NoError(t, err)
		assert.True(t, out.Added)
		last = out
		if i < len(ids)-1 {
			assert.Nil(t, out.Report)
			require.True(t, h.ctrl.Advance(Next))
		}
	}

	require.NotNil(t, last.Report, "last card finalizes")
	assert.Equal(t, ScoreNotApplicable, last.Report.Score)
	assert.False(t, last.Report.ScoreApplicable())
	assert.Len(t, last.Report.QuestionIDs, 5)
	assert.Equal(t, []string{"uw-w1", "uw-w2", "uw-w3", "uw-w4", "uw-w5"}, last.Report.QuestionIDs)
	assert.Equal(t, 5, last.Report.NumQuestions)
	assert.Equal(t, PhaseFinalized, h.ctrl.Phase())

	require.Len(t, h.learner.reqs, 5)
	for i, req := range h.learner.reqs {
		assert.Equal(t, i == 4, req.IsLast, "request %d", i)
		assert.Equal(t, "greetings", req.LearningBlock)
	}
}

func TestRecordLearned_DuplicateIDIsNoop(t *testing.T) {
	h := newHarness(t, ModeLearn, "w1", "w2", "w3")
	h.learner.ids = map[string]string{"w1": "7", "w2": "7"}
	ctx := context.Background()

	out, err := h.ctrl.RecordLearned(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, out.Added)
	h.ctrl.Advance(Next)

	out, err = h.ctrl.RecordLearned(ctx, "w2")
	require.NoError(t, err)
	assert.False(t, out.Added)
	assert.Equal(t, []string{"7"}, h.ctrl.State().Learned)
}

func TestRecordLearned_Anonymous(t *testing.T) {
	h := newHarness(t, ModeLearn, "w1", "w2")
	h.learner.anon = true

	out, err := h.ctrl.RecordLearned(context.Background(), "w1")
	require.NoError(t, err)
	assert.False(t, out.Added)
	assert.Empty(t, h.ctrl.State().Learned)
}

func TestRecordLearned_WrongMode(t *testing.T) {
	h := newHarness(t, ModeReview, "q1")
	_, err := h.ctrl.RecordLearned(context.Background(), "q1")
	assert.ErrorIs(t, err, ErrWrongMode)
}

func TestRecordLearned_FailureKeepsSet(t *testing.T) {
	h := newHarness(t, ModeLearn, "w1", "w2")
	h.learner.err = errors.New("boom")

	_, err := h.ctrl.RecordLearned(context.Background(), "w1")
	require.Error(t, err)
	st := h.ctrl.State()
	assert.Empty(t, st.Learned)
	assert.False(t, st.Cards[0].Locked)
	assert.Equal(t, PhasePresenting, st.Phase)
}

func TestFinalize_ReviewFourQuestionsOneWrong(t *testing.T) {
	h := newHarness(t, ModeReview, "1", "2", "3", "4")
	ctx := context.Background()
	for _, id := range []string{"1", "2", "3", "4"} {
		value := "right-" + id
		if id == "3" {
			value = "wrong-a"
		}
		_, err := h.ctrl.SubmitAnswer(ctx, id, value, Point{})
		require.NoError(t, err)
		h.ctrl.Advance(Next)
	}

	report, err := h.ctrl.Finalize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, report.NumQuestions)
	assert.Equal(t, 3, report.Score)
	assert.Equal(t, ModeReview, report.Mode)
	assert.InDelta(t, 75.0, report.Percent(), 0.001)
}

func TestFinalize_OnlyOnce(t *testing.T) {
	h := newHarness(t, ModeReview, "1")
	ctx := context.Background()

	_, err := h.ctrl.Finalize(ctx)
	require.NoError(t, err)

	_, err = h.ctrl.Finalize(ctx)
	assert.ErrorIs(t, err, ErrFinalized)
	assert.Len(t, h.sink.reports, 1)

	_, err = h.ctrl.SubmitAnswer(ctx, "1", "right-1", Point{})
	assert.ErrorIs(t, err, ErrFinalized)
	assert.False(t, h.ctrl.Advance(Next))
	assert.Contains(t, h.render.Kinds(), "finished")
}

func TestFinalize_FailureAllowsRetry(t *testing.T) {
	h := newHarness(t, ModeReview, "1")
	h.sink.err = fmt.Errorf("503")
	ctx := context.Background()

	_, err := h.ctrl.Finalize(ctx)
	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "greetings", de.Report.LearningBlock)
	assert.Equal(t, []string{"1"}, de.Report.QuestionIDs)
	assert.Equal(t, PhasePresenting, h.ctrl.Phase())

	h.sink.err = nil
	_, err = h.ctrl.Finalize(ctx)
	require.NoError(t, err)
	assert.Len(t, h.sink.reports, 1)
}

func TestFinalize_DeduplicatesRepeatedCards(t *testing.T) {
	h := newHarness(t, ModeMultipleChoice, "1", "2", "1")
	report, err := h.ctrl.Finalize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, report.QuestionIDs)
	assert.Equal(t, 3, report.NumQuestions)
}
