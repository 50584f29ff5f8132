package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/geogem/internal/router"
	"github.com/abhisek/geogem/internal/screen"
	"github.com/abhisek/geogem/internal/store"
	"github.com/abhisek/geogem/internal/ui/layout"
	"github.com/abhisek/geogem/internal/ui/theme"
)

// Limit is the number of quizzes listed.
const Limit = 50

type historyLoadedMsg struct {
	Reports []store.ReportRecord
	Err     error
}

// Screen lists the quizzes finished on this machine.
type Screen struct {
	repo     store.ReportRepo
	reports  []store.ReportRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the history screen. A nil repo shows an empty history.
func New(repo store.ReportRepo) *Screen {
	return &Screen{repo: repo, expanded: make(map[int]bool)}
}

func (s *Screen) Init() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		if repo == nil {
			return historyLoadedMsg{}
		}
		reports, err := repo.ListReports(context.Background(), Limit)
		return historyLoadedMsg{Reports: reports, Err: err}
	}
}

func (s *Screen) Title() string {
	return "History"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.reports = msg.Reports
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, router.Pop()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.reports)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Center("\n\n"+theme.Notice.Render("Error: "+s.errMsg), width)
	}
	if !s.loaded {
		return layout.Center("\n\n"+theme.Hint.Render("Loading history..."), width)
	}
	if len(s.reports) == 0 {
		return layout.Center("\n\n"+theme.Hint.Render("No quizzes yet. Pick a block and start one!"), width)
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, r := range s.reports {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(layout.Center(style.Render(prefix+Line(r)), width))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("session %s  ids %s", r.SessionID, strings.Join(r.QuestionIDs, ","))
			if !r.Delivered {
				detail += "  (not delivered to the server)"
			}
			b.WriteString(layout.Center(theme.Hint.Render(detail), width))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Line is the one-line summary of a report, shared with `geogem history`.
func Line(r store.ReportRecord) string {
	when := r.FinishedAt.Local().Format("Jan 02, 2006 15:04")
	result := fmt.Sprintf("%d/%d", r.Score, r.NumQuestions)
	if r.Score < 0 {
		result = fmt.Sprintf("%d learned", len(r.QuestionIDs))
	}
	mark := ""
	if !r.Delivered {
		mark = "  !"
	}
	return fmt.Sprintf("%s  %-12s %-16s %s%s", when, r.LearningBlock, r.Mode, result, mark)
}
