package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/geogem/internal/ui/theme"
)

// TextInput wraps bubbles/textinput for inline word edits.
type TextInput struct {
	Model textinput.Model
	Label string
}

// NewTextInput creates a focused input prefilled with value.
func NewTextInput(label, value string, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = label
	ti.SetValue(value)
	ti.CursorEnd()
	if limit > 0 {
		ti.CharLimit = limit
	}
	ti.Focus()
	return TextInput{Model: ti, Label: label}
}

// Init returns the cursor blink command.
func (t TextInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards messages to the wrapped input.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label and the input.
func (t TextInput) View() string {
	return lipgloss.NewStyle().Foreground(theme.TextDim).Render(t.Label+": ") + t.Model.View()
}

// Value returns the trimmed input.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}
