package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/geogem/internal/quiz"
	"github.com/abhisek/geogem/internal/ui/theme"
)

// OptionList renders the answer controls of a quiz card and tracks the
// highlighted one. Disabled options are skipped by arrow navigation.
type OptionList struct {
	Options  []quiz.Option
	Selected int
	Locked   bool
}

// NewOptionList creates a list with the first enabled option highlighted.
func NewOptionList(opts []quiz.Option) OptionList {
	l := OptionList{}
	l.SetOptions(opts)
	return l
}

// SetOptions refreshes the controls from the controller's copy of the card,
// keeping the highlight when it is still enabled.
func (l *OptionList) SetOptions(opts []quiz.Option) {
	l.Options = opts
	if l.Selected >= 0 && l.Selected < len(opts) && !opts[l.Selected].Disabled {
		return
	}
	l.Selected = l.step(-1, 1)
	if l.Selected < 0 {
		l.Selected = 0
	}
}

func (l OptionList) step(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(l.Options); i += dir {
		if !l.Options[i].Disabled {
			return i
		}
	}
	return -1
}

// Choose highlights option i (0-based) when it exists and is enabled.
func (l *OptionList) Choose(i int) bool {
	if i < 0 || i >= len(l.Options) || l.Options[i].Disabled {
		return false
	}
	l.Selected = i
	return true
}

// Value returns the highlighted option value.
func (l OptionList) Value() (string, bool) {
	if l.Locked || l.Selected < 0 || l.Selected >= len(l.Options) || l.Options[l.Selected].Disabled {
		return "", false
	}
	return l.Options[l.Selected].Value, true
}

// Update handles arrow keys.
func (l OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	if l.Locked {
		return l, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if i := l.step(l.Selected, -1); i >= 0 {
			l.Selected = i
		}
	case "down", "j":
		if i := l.step(l.Selected, 1); i >= 0 {
			l.Selected = i
		}
	}
	return l, nil
}

// View renders the options numbered from 1.
func (l OptionList) View() string {
	var b strings.Builder
	for i, opt := range l.Options {
		prefix := "  "
		if i == l.Selected && !l.Locked && !opt.Disabled {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt.Value)

		switch {
		case opt.Mark == quiz.MarkCorrect:
			line = theme.Correct.Render(line + "  ✓")
		case opt.Mark == quiz.MarkIncorrect:
			line = theme.Incorrect.Render(line + "  ✗")
		case opt.Disabled || l.Locked:
			line = theme.Disabled.Render(line)
		case i == l.Selected:
			line = theme.Selected.Render(line)
		default:
			line = theme.Unselected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
