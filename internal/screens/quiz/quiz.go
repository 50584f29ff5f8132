package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	qz "github.com/abhisek/geogem/internal/quiz"
	"github.com/abhisek/geogem/internal/remote"
	"github.com/abhisek/geogem/internal/router"
	"github.com/abhisek/geogem/internal/screen"
	"github.com/abhisek/geogem/internal/store"
	"github.com/abhisek/geogem/internal/ui/components"
	"github.com/abhisek/geogem/internal/ui/layout"
	"github.com/abhisek/geogem/internal/ui/theme"
)

// Backend is the part of the GeoGem API a quiz talks to.
type Backend interface {
	qz.Validator
	qz.Learner
	qz.ResultsSink
	FetchDeck(ctx context.Context, mode qz.Mode, block string) (remote.Deck, error)
}

// Options configures a quiz screen. Every field is optional.
type Options struct {
	Examples qz.ExampleSource
	Timeout  time.Duration

	// Reports keeps finished quizzes in the local history.
	Reports store.ReportRepo

	// Results builds the screen that replaces the quiz once the report
	// has been delivered.
	Results func(qz.Report) screen.Screen
}

// Purpose tags the quiz's server calls in the request log.
const Purpose = "quiz"

const (
	burstFrames   = 4
	burstInterval = 120 * time.Millisecond
	bell          = "\a"
)

type burst struct {
	text   string
	at     qz.Point
	frames int
	seq    int
}

// Screen runs one quiz attempt. It renders the controller's effects by
// draining a RecordingRenderer after every transition.
type Screen struct {
	backend Backend
	mode    qz.Mode
	block   string
	opts    Options

	ctrl    *qz.Controller
	effects *qz.RecordingRenderer

	card     qz.Card
	options  components.OptionList
	examples map[string]string
	score    int
	total    int
	notice   string
	burst    burst
	inflight int
	loading  bool
	loadErr  string
	showHelp bool
	report   *qz.Report
	spinner  spinner.Model
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates a quiz over the given block.
func New(backend Backend, mode qz.Mode, block string, opts Options) *Screen {
	if opts.Timeout <= 0 {
		opts.Timeout = qz.DefaultTimeout
	}
	return &Screen{
		backend:  backend,
		mode:     mode,
		block:    block,
		opts:     opts,
		examples: make(map[string]string),
		loading:  true,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent)),
		),
	}
}

func (s *Screen) Init() tea.Cmd {
	if s.ctrl != nil {
		return nil
	}
	backend, mode, block, timeout := s.backend, s.mode, s.block, s.opts.Timeout
	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(remote.WithPurpose(context.Background(), Purpose), timeout)
		defer cancel()
		deck, err := backend.FetchDeck(ctx, mode, block)
		return deckLoadedMsg{Deck: deck, Err: err}
	}
	return tea.Batch(fetch, s.spinner.Tick)
}

func (s *Screen) Title() string {
	return fmt.Sprintf("%s · %s", modeLabel(s.mode), s.block)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.mode == qz.ModeLearn {
		return []layout.KeyHint{
			{Key: "l", Description: "Learned"},
			{Key: "←→", Description: "Cards"},
			{Key: "f", Description: "Finish"},
			{Key: "?", Description: "Help"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "1-4", Description: "Choose"},
		{Key: "Enter", Description: "Submit"},
		{Key: "←→", Description: "Cards"},
		{Key: "f", Description: "Finish"},
		{Key: "?", Description: "Help"},
	}
}

func (s *Screen) helpHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓ / 1-4", Description: "Highlight an answer"},
		{Key: "Enter", Description: "Submit the highlighted answer"},
		{Key: "n / →", Description: "Next card"},
		{Key: "p / ←", Description: "Previous card"},
		{Key: "f", Description: "Finish and send the results"},
		{Key: "?", Description: "Close this help"},
	}
	if s.mode == qz.ModeLearn {
		hints[1] = layout.KeyHint{Key: "l / Enter", Description: "Add the word to your vocabulary"}
	}
	return hints
}

func (s *Screen) busy() bool {
	return s.inflight > 0
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case deckLoadedMsg:
		return s, s.start(msg)

	case answerCheckedMsg:
		s.inflight--
		cmd := s.apply()
		if msg.Err != nil && s.notice == "" {
			s.notice = describe(msg.Err)
		}
		return s, cmd

	case learnedMsg:
		s.inflight--
		cmd := s.apply()
		if msg.Err != nil && s.notice == "" {
			s.notice = describe(msg.Err)
		}
		return s, tea.Batch(cmd, s.keepUndelivered(msg.Err))

	case finalizedMsg:
		s.inflight--
		cmd := s.apply()
		if msg.Err != nil && s.notice == "" {
			s.notice = describe(msg.Err)
		}
		return s, tea.Batch(cmd, s.keepUndelivered(msg.Err))

	case burstTickMsg:
		if msg.Seq != s.burst.seq || s.burst.frames == 0 {
			return s, nil
		}
		s.burst.frames--
		if s.burst.frames > 0 {
			return s, burstTick(s.burst.seq)
		}
		return s, nil

	case reportSavedMsg:
		if msg.Err != nil {
			s.notice = "Could not save the quiz to local history: " + msg.Err.Error()
		}
		return s, nil

	case spinner.TickMsg:
		if !s.loading && !s.busy() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

// start builds the controller for a freshly loaded deck.
func (s *Screen) start(msg deckLoadedMsg) tea.Cmd {
	s.loading = false
	if msg.Err != nil {
		if remote.IsNotFound(msg.Err) {
			s.loadErr = "There are no words to practise in this block yet."
		} else {
			s.loadErr = describe(msg.Err)
		}
		return nil
	}
	state, err := qz.NewSessionState(s.block, s.mode, msg.Deck.QuizCards())
	if err != nil {
		s.loadErr = "There are no words to practise in this block yet."
		return nil
	}
	s.effects = &qz.RecordingRenderer{}
	s.ctrl = qz.NewController(state, qz.Options{
		Validator: s.backend,
		Learner:   s.backend,
		Sink:      s.backend,
		Renderer:  s.effects,
		Examples:  s.opts.Examples,
		Timeout:   s.opts.Timeout,
	})
	return s.apply()
}

func (s *Screen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "?" {
		s.showHelp = !s.showHelp
		return nil
	}
	if s.ctrl == nil || s.report != nil {
		return nil
	}

	switch key {
	case "left", "p":
		return s.move(qz.Previous)
	case "right", "n":
		return s.move(qz.Next)
	case "1", "2", "3", "4":
		s.options.Choose(int(key[0] - '1'))
	case "up", "down", "k", "j":
		s.options, _ = s.options.Update(msg)
	case "enter":
		if s.mode == qz.ModeLearn {
			return s.learn()
		}
		return s.submit()
	case "l":
		if s.mode == qz.ModeLearn {
			return s.learn()
		}
	case "f":
		return s.finalize()
	}
	return nil
}

func (s *Screen) move(dir qz.Direction) tea.Cmd {
	if !s.ctrl.Advance(dir) {
		return nil
	}
	s.notice = ""
	s.burst.frames = 0
	return s.apply()
}

func (s *Screen) submit() tea.Cmd {
	value, ok := s.options.Value()
	if !ok {
		return nil
	}
	id := s.card.ID
	// the burst appears just right of the chosen answer
	anchor := qz.Point{X: lipgloss.Width(value) + 8, Y: s.options.Selected}
	ctrl := s.ctrl

	s.inflight++
	s.notice = ""
	s.options.Locked = true
	return tea.Batch(func() tea.Msg {
		out, err := ctrl.SubmitAnswer(remote.WithPurpose(context.Background(), Purpose), id, value, anchor)
		return answerCheckedMsg{Outcome: out, Err: err}
	}, s.spinner.Tick)
}

func (s *Screen) learn() tea.Cmd {
	if s.card.Locked {
		return nil
	}
	id := s.card.ID
	ctrl := s.ctrl

	s.inflight++
	s.notice = ""
	return tea.Batch(func() tea.Msg {
		out, err := ctrl.RecordLearned(remote.WithPurpose(context.Background(), Purpose), id)
		return learnedMsg{Outcome: out, Err: err}
	}, s.spinner.Tick)
}

func (s *Screen) finalize() tea.Cmd {
	if s.busy() {
		return nil
	}
	ctrl := s.ctrl
	s.inflight++
	s.notice = ""
	return tea.Batch(func() tea.Msg {
		rep, err := ctrl.Finalize(remote.WithPurpose(context.Background(), Purpose))
		return finalizedMsg{Report: rep, Err: err}
	}, s.spinner.Tick)
}

// apply renders the effects recorded since the last call.
func (s *Screen) apply() tea.Cmd {
	var cmds []tea.Cmd
	for _, e := range s.effects.Drain() {
		switch e.Kind {
		case qz.EffectSuccess:
			cmds = append(cmds, tea.Raw(bell))
		case qz.EffectBurst:
			s.burst = burst{text: e.Text, at: e.At, frames: burstFrames, seq: s.burst.seq + 1}
			cmds = append(cmds, burstTick(s.burst.seq))
		case qz.EffectExample:
			s.examples[e.QuestionID] = e.Text
		case qz.EffectScore:
			s.score, s.total = e.Score, e.Total
			if s.mode.Scored() {
				cmds = append(cmds, screen.SetStatus(fmt.Sprintf("score %d/%d", e.Score, e.Total)))
			}
		case qz.EffectNotice:
			s.notice = describe(e.Err)
		case qz.EffectFinished:
			rep := *e.Report
			s.report = &rep
			cmds = append(cmds, s.saveReport(rep, true))
			if s.opts.Results != nil {
				cmds = append(cmds, router.Replace(s.opts.Results(rep)))
			}
		}
	}

	s.card = s.ctrl.Visible()
	s.options.SetOptions(s.card.Options)
	s.options.Locked = s.card.Locked || s.card.Pending
	return tea.Batch(cmds...)
}

// keepUndelivered saves the report the server did not accept. Other
// errors leave the quiz running and save nothing.
func (s *Screen) keepUndelivered(err error) tea.Cmd {
	var de *qz.DeliveryError
	if !errors.As(err, &de) {
		return nil
	}
	return s.saveReport(de.Report, false)
}

func (s *Screen) saveReport(r qz.Report, delivered bool) tea.Cmd {
	repo := s.opts.Reports
	if repo == nil {
		return nil
	}
	rec := store.ReportRecord{
		SessionID:     r.SessionID,
		LearningBlock: r.LearningBlock,
		Mode:          string(r.Mode),
		QuestionIDs:   r.QuestionIDs,
		Score:         r.Score,
		NumQuestions:  r.NumQuestions,
		Delivered:     delivered,
		FinishedAt:    r.FinishedAt,
	}
	return func() tea.Msg {
		return reportSavedMsg{Err: repo.SaveReport(context.Background(), rec)}
	}
}

func burstTick(seq int) tea.Cmd {
	return tea.Tick(burstInterval, func(time.Time) tea.Msg {
		return burstTickMsg{Seq: seq}
	})
}

// describe turns a round trip failure into a one-line notice.
func describe(err error) string {
	switch remote.Kind(err) {
	case remote.KindNetwork:
		return "Could not reach the server. Nothing was recorded, try again."
	case remote.KindTimeout:
		return "The server took too long to answer. Nothing was recorded, try again."
	case remote.KindValidation:
		return "The server rejected the request: " + err.Error()
	}
	return err.Error()
}

func modeLabel(m qz.Mode) string {
	switch m {
	case qz.ModeLearn:
		return "Learn"
	case qz.ModeMultipleChoice:
		return "Multiple choice"
	case qz.ModeReview:
		return "Review"
	}
	return string(m)
}
