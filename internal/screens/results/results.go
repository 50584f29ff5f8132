package results

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/geogem/internal/quiz"
	"github.com/abhisek/geogem/internal/router"
	"github.com/abhisek/geogem/internal/screen"
	"github.com/abhisek/geogem/internal/ui/components"
	"github.com/abhisek/geogem/internal/ui/layout"
	"github.com/abhisek/geogem/internal/ui/theme"
)

// Actions are the follow-ups offered after a quiz. Nil actions are hidden.
type Actions struct {
	Again func() tea.Cmd
	Stats func() tea.Cmd
}

type button struct {
	label  string
	action func() tea.Cmd
}

// Screen shows the report of a finished quiz.
type Screen struct {
	report   quiz.Report
	buttons  []button
	selected int
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the results screen for r.
func New(r quiz.Report, actions Actions) *Screen {
	s := &Screen{report: r}
	if actions.Again != nil {
		s.buttons = append(s.buttons, button{label: "Practise again", action: actions.Again})
	}
	if actions.Stats != nil {
		s.buttons = append(s.buttons, button{label: "Block stats", action: actions.Stats})
	}
	s.buttons = append(s.buttons, button{label: "Done", action: router.Pop})
	return s
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return "Results"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Choose"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Blocks"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "left", "h", "shift+tab":
		if s.selected > 0 {
			s.selected--
		}
	case "right", "l", "tab":
		if s.selected < len(s.buttons)-1 {
			s.selected++
		}
	case "enter":
		return s, s.buttons[s.selected].action()
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	r := s.report
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render(headline(r)))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Width(14).Render(label))
		b.WriteString(theme.Body.Render(value))
		b.WriteString("\n")
	}
	row("Block", r.LearningBlock)
	row("Mode", string(r.Mode))
	row("Cards", fmt.Sprintf("%d", r.NumQuestions))

	if r.ScoreApplicable() {
		row("Score", fmt.Sprintf("%d/%d", r.Score, r.NumQuestions))
		b.WriteString("\n")
		b.WriteString(components.ScoreBar(r.Percent()/100, cw-4).View())
	} else {
		row("Learned", fmt.Sprintf("%d new words", len(r.QuestionIDs)))
	}
	b.WriteString("\n\n")

	labels := make([]string, len(s.buttons))
	for i, btn := range s.buttons {
		labels[i] = btn.label
	}
	b.WriteString(components.ButtonRow(labels, s.selected))

	card := components.CardBox(b.String(), cw, false)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func headline(r quiz.Report) string {
	if !r.ScoreApplicable() {
		if len(r.QuestionIDs) == 0 {
			return "No new words this time"
		}
		return "New words added!"
	}
	switch p := r.Percent(); {
	case p >= 100:
		return "Perfect score!"
	case p >= 70:
		return "Well done!"
	case p >= 40:
		return "Getting there"
	}
	return "Keep practising"
}
