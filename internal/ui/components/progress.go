package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/geogem/internal/ui/theme"
)

// ProgressBar is a one-line bar. Percent is a fraction in [0, 1].
type ProgressBar struct {
	Label   string
	Percent float64
	Width   int

	// WithPercent appends the rounded percentage after the bar.
	WithPercent bool
}

var (
	barFilled = lipgloss.NewStyle().Background(theme.Secondary)
	barEmpty  = lipgloss.NewStyle().Background(theme.Border)
)

func (p ProgressBar) View() string {
	var label, suffix string
	if p.Label != "" {
		label = theme.Body.Render(p.Label) + "  "
	}
	if p.WithPercent {
		suffix = descText(fmt.Sprintf("  %3d%%", int(p.Percent*100)))
	}

	cells := max(p.Width-lipgloss.Width(label)-lipgloss.Width(suffix), 4)
	filled := min(max(int(float64(cells)*p.Percent), 0), cells)

	return label +
		barFilled.Render(strings.Repeat(" ", filled)) +
		barEmpty.Render(strings.Repeat(" ", cells-filled)) +
		suffix
}

func descText(s string) string {
	return lipgloss.NewStyle().Foreground(theme.TextDim).Render(s)
}

// ScoreBar shows a quiz percentage without a label.
func ScoreBar(percent float64, width int) ProgressBar {
	return ProgressBar{Percent: percent, Width: width, WithPercent: true}
}

// CardCounter returns a bar for "card n of total".
func CardCounter(n, total, width int) ProgressBar {
	var pct float64
	if total > 0 {
		pct = float64(n) / float64(total)
	}
	return ProgressBar{Label: fmt.Sprintf("Card %d/%d", n, total), Percent: pct, Width: width}
}
