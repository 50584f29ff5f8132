package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/geogem/internal/ui/theme"
)

const titleFull = ` ┏━╸┏━╸┏━┓┏━╸┏━╸┏┳┓
 ┃╺┓┣╸ ┃ ┃┃╺┓┣╸ ┃┃┃
 ┗━┛┗━╸┗━┛┗━┛┗━╸╹ ╹`

const titleCompact = "G · E · O · G · E · M"

const tagline = "ქართული სიტყვები · Georgian words"

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	title := titleFull
	if compact {
		title = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title) + "\n" + theme.Hint.Render(tagline))
}
