package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/geogem/internal/ui/layout"
)

// Screen is one page of the terminal UI.
type Screen interface {
	// Init returns the command that loads the screen's data.
	Init() tea.Cmd

	// Update handles messages and returns the updated screen.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area, without header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusMsg replaces the status text on the right of the header.
type StatusMsg struct {
	Text string
}

// SetStatus returns a command that emits a StatusMsg.
func SetStatus(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}

// InputCapturer is implemented by screens that sometimes own the whole
// keyboard, e.g. while a text field is open. Esc then goes to the screen
// instead of closing it.
type InputCapturer interface {
	CapturingInput() bool
}
