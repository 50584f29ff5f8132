package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/geogem/internal/chart"
	"github.com/abhisek/geogem/internal/mastery"
	"github.com/abhisek/geogem/internal/remote"
	"github.com/abhisek/geogem/internal/screen"
	"github.com/abhisek/geogem/internal/store"
	"github.com/abhisek/geogem/internal/ui/components"
	"github.com/abhisek/geogem/internal/ui/layout"
	"github.com/abhisek/geogem/internal/ui/theme"
)

// Source loads the mastery summary of a block.
type Source interface {
	BlockStats(ctx context.Context, block string) (remote.BlockStats, error)
}

const (
	recentReports = 5
	barHeight     = 6
)

type statsLoadedMsg struct {
	Stats   remote.BlockStats
	Reports []store.ReportRecord
	Err     error
}

// Screen draws the mastery gauge and level histogram of one block.
type Screen struct {
	source  Source
	reports store.ReportRepo
	block   string
	timeout time.Duration

	stats  remote.BlockStats
	recent []store.ReportRecord
	loaded bool
	errMsg string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the stats screen. reports may be nil.
func New(source Source, reports store.ReportRepo, block string, timeout time.Duration) *Screen {
	return &Screen{source: source, reports: reports, block: block, timeout: timeout}
}

func (s *Screen) Init() tea.Cmd {
	source, reports, block, timeout := s.source, s.reports, s.block, s.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(remote.WithPurpose(context.Background(), "stats"), timeout)
		defer cancel()

		st, err := source.BlockStats(ctx, block)
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		var recent []store.ReportRecord
		if reports != nil {
			// history is best effort
			recent, _ = reports.ReportsForBlock(ctx, block, recentReports)
		}
		return statsLoadedMsg{Stats: st, Reports: recent}
	}
}

func (s *Screen) Title() string {
	return "Stats · " + s.block
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.stats = msg.Stats
		s.recent = msg.Reports
		return s, screen.SetStatus(fmt.Sprintf("lvl %d · %d xp", msg.Stats.ProfileLevel, msg.Stats.Experience))

	case tea.KeyMsg:
		if msg.String() == "r" {
			s.loaded = false
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Center("\n\n"+theme.Notice.Render("Error: "+s.errMsg), width)
	}
	if !s.loaded {
		return layout.Center("\n\n"+theme.Hint.Render("Loading stats..."), width)
	}

	st := s.stats
	cw := components.ContentWidth(width)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString(theme.Title.Render(st.LearningBlock))
	b.WriteString("\n\n")
	b.WriteString(dim.Render(fmt.Sprintf("%d of %d words learned", st.NumLearned, st.NumWords)))
	b.WriteString("\n\n")

	whole, frac := chart.Split(st.MasteryLevel)
	b.WriteString(theme.Body.Render(fmt.Sprintf("Block level %d", whole)))
	if whole < mastery.MaxLevel() {
		b.WriteString(dim.Render(fmt.Sprintf("  (%.0f%% to level %d)", frac*100, whole+1)))
	}
	b.WriteString("\n")
	b.WriteString(chart.Doughnut(frac, 20))
	b.WriteString("\n")
	b.WriteString(dim.Render(fmt.Sprintf("overall %.0f%%", mastery.BlockLevelPercent(st.MasteryLevel))))
	b.WriteString("\n\n")

	b.WriteString(theme.Body.Render("Words per mastery level"))
	b.WriteString("\n")
	b.WriteString(chart.Bars(chart.MasteryHistogram(st.Levels, mastery.MaxLevel()), barHeight))

	if len(s.recent) > 0 {
		b.WriteString("\n\n")
		b.WriteString(theme.Body.Render("Recent quizzes"))
		for _, r := range s.recent {
			b.WriteString("\n")
			b.WriteString(dim.Render(recentLine(r)))
		}
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, components.CardBox(b.String(), cw, false))
}

func recentLine(r store.ReportRecord) string {
	when := r.FinishedAt.Local().Format("Jan 02 15:04")
	if r.Score < 0 {
		return fmt.Sprintf("%s  %-15s %d learned", when, r.Mode, len(r.QuestionIDs))
	}
	return fmt.Sprintf("%s  %-15s %d/%d", when, r.Mode, r.Score, r.NumQuestions)
}
