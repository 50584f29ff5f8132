package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/geogem/internal/ui/theme"
)

// ContentWidth is the inner width shared by the boxed sections of a screen.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 64)
}

// CardBox wraps content in a rounded card of content width cw. highlight
// switches the border to the accent color.
func CardBox(content string, cw int, highlight bool) string {
	border := theme.Border
	if highlight {
		border = theme.Accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(cw - 2).
		Padding(1, 2).
		Render(content)
}
