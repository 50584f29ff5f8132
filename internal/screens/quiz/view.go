package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	qz "github.com/abhisek/geogem/internal/quiz"
	"github.com/abhisek/geogem/internal/ui/components"
	"github.com/abhisek/geogem/internal/ui/layout"
	"github.com/abhisek/geogem/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	if s.showHelp {
		return "\n" + layout.RenderHelp(s.helpHints(), width)
	}
	if s.loadErr != "" {
		return layout.Center("\n\n"+theme.Notice.Render(s.loadErr)+"\n\n"+theme.Hint.Render("Esc to go back"), width)
	}
	if s.loading || s.ctrl == nil {
		return layout.Center("\n\n"+s.spinner.View()+" Loading cards...", width)
	}

	cw := components.ContentWidth(width)
	var sections []string

	sections = append(sections, s.renderStatusLine(cw))
	sections = append(sections, components.CardBox(s.renderCard(), cw, s.burst.frames > 0))

	if s.notice != "" {
		sections = append(sections, theme.Notice.Width(cw).Render(s.notice))
	} else if s.busy() {
		sections = append(sections, theme.Hint.Render(s.spinner.View()+" checking..."))
	}

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, "\n"+content)
}

func (s *Screen) renderStatusLine(cw int) string {
	counter := components.CardCounter(s.card.Ordinal, s.total, cw/2).View()
	var right string
	if s.mode.Scored() {
		right = lipgloss.NewStyle().Foreground(theme.Success).Render(fmt.Sprintf("★ %d/%d", s.score, s.total))
	}
	gap := max(cw-lipgloss.Width(counter)-lipgloss.Width(right), 1)
	return counter + strings.Repeat(" ", gap) + right
}

func (s *Screen) renderCard() string {
	var b strings.Builder
	b.WriteString(theme.Word.Render(s.card.Prompt))
	if s.card.Transliteration != "" {
		b.WriteString("  " + theme.Hint.Render("["+s.card.Transliteration+"]"))
	}
	b.WriteString("\n\n")

	if s.mode == qz.ModeLearn {
		b.WriteString(s.renderLearn())
	} else {
		b.WriteString(s.renderOptions())
	}

	if ex := s.example(); ex != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Secondary).Italic(true).Render("e.g. "+ex))
	}
	return b.String()
}

func (s *Screen) renderLearn() string {
	var b strings.Builder
	for _, opt := range s.card.Options {
		b.WriteString(theme.Body.Render(opt.Value))
		b.WriteString("\n")
	}
	if s.card.Locked {
		b.WriteString(theme.Correct.Render("✓ added to your words"))
	} else {
		b.WriteString(theme.Hint.Render("press l when you know this word"))
	}
	b.WriteString("\n")
	return b.String()
}

func (s *Screen) renderOptions() string {
	lines := strings.Split(strings.TrimRight(s.options.View(), "\n"), "\n")
	if s.burst.frames > 0 && s.burst.at.Y >= 0 && s.burst.at.Y < len(lines) {
		i := s.burst.at.Y
		pad := max(s.burst.at.X-lipgloss.Width(lines[i]), 1)
		lines[i] += strings.Repeat(" ", pad) + burstStyle(s.burst.frames).Render(s.burst.text)
	}
	return strings.Join(lines, "\n") + "\n"
}

// burstStyle fades the "+1" as frames run out.
func burstStyle(frames int) lipgloss.Style {
	switch {
	case frames >= burstFrames-1:
		return theme.Burst
	case frames > 1:
		return lipgloss.NewStyle().Foreground(theme.Accent)
	}
	return lipgloss.NewStyle().Foreground(theme.TextDim)
}

func (s *Screen) example() string {
	if ex := s.examples[s.card.ID]; ex != "" {
		return ex
	}
	// learn cards carry their example from the deck
	if s.mode == qz.ModeLearn {
		return s.card.Example
	}
	return ""
}
