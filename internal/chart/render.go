package chart

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/geogem/internal/ui/theme"
)

// Doughnut draws the fraction as a row of width segments with the percent in
// the middle, e.g. "●●●●● 60% ●○○○○".
func Doughnut(fraction float64, width int) string {
	if width < 4 {
		width = 4
	}
	fraction = min(1, max(0, fraction))
	filled := int(fraction*float64(width) + 0.5)

	on := lipgloss.NewStyle().Foreground(theme.Success)
	off := lipgloss.NewStyle().Foreground(theme.Border)
	label := lipgloss.NewStyle().Bold(true).Foreground(theme.Text).
		Render(fmt.Sprintf(" %3d%% ", int(fraction*100+0.5)))

	half := width / 2
	var b strings.Builder
	for i := range width {
		if i == half {
			b.WriteString(label)
		}
		if i < filled {
			b.WriteString(on.Render("●"))
		} else {
			b.WriteString(off.Render("○"))
		}
	}
	return b.String()
}

// Bars draws s as a vertical bar chart of the given height with the x
// labels underneath and the count on top of every bar.
func Bars(s Series, height int) string {
	if len(s.Y) == 0 {
		return ""
	}
	if height < 1 {
		height = 1
	}
	top := s.Max()

	const colWidth = 4
	bar := lipgloss.NewStyle().Foreground(theme.Secondary)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	cells := make([]int, len(s.Y))
	for i, y := range s.Y {
		if top > 0 {
			cells[i] = (y*height + top - 1) / top
		}
	}

	var rows []string
	for row := height; row >= 0; row-- {
		var b strings.Builder
		for i, y := range s.Y {
			switch {
			case row == cells[i]:
				b.WriteString(dim.Render(pad(strconv.Itoa(y), colWidth)))
			case row < cells[i]:
				b.WriteString(bar.Render(pad("██", colWidth)))
			default:
				b.WriteString(strings.Repeat(" ", colWidth))
			}
		}
		rows = append(rows, strings.TrimRight(b.String(), " "))
	}

	var axis, labels strings.Builder
	for _, x := range s.X {
		axis.WriteString(strings.Repeat("─", colWidth))
		labels.WriteString(pad(strconv.Itoa(x), colWidth))
	}
	rows = append(rows, dim.Render(axis.String()), dim.Render(strings.TrimRight(labels.String(), " ")))
	return strings.Join(rows, "\n")
}

// pad centers s in a cell of width w.
func pad(s string, w int) string {
	n := lipgloss.Width(s)
	if n >= w {
		return s
	}
	left := (w - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-n-left)
}
