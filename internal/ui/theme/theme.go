// Package theme holds the colours and text styles shared by every screen.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette, loosely after the Georgian flag.
var (
	Primary   = lipgloss.Color("#E11D48") // cross red
	Secondary = lipgloss.Color("#38BDF8")
	Accent    = lipgloss.Color("#FBBF24")
	Success   = lipgloss.Color("#4ADE80")
	Error     = lipgloss.Color("#F87171")
	Text      = lipgloss.Color("#F5F5F4")
	TextDim   = lipgloss.Color("#A8A29E")
	BgCard    = lipgloss.Color("#292524")
	Border    = lipgloss.Color("#44403C")
)

func fg(c color.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// Text styles.
var (
	Title = fg(Primary).Bold(true).Align(lipgloss.Center)
	Body  = fg(Text)
	Hint  = fg(TextDim).Italic(true)

	// Word is the Georgian prompt on a card.
	Word = fg(Text).Bold(true)
)

// Option and feedback states.
var (
	Selected   = fg(Primary).Bold(true)
	Unselected = fg(Text)
	Disabled   = fg(TextDim).Strikethrough(true)
	Correct    = fg(Success).Bold(true)
	Incorrect  = fg(Error).Bold(true)
	Notice     = fg(Error).Italic(true)
	Burst      = fg(Accent).Bold(true)
)

var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	ButtonActive   = lipgloss.NewStyle().Background(Primary).Foreground(Text).Bold(true).Padding(0, 2)
	ButtonInactive = Card.Padding(0, 2)
)
