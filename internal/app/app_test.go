package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/geogem/internal/router"
	"github.com/abhisek/geogem/internal/screen"
	"github.com/abhisek/geogem/internal/screens/home"
	"github.com/abhisek/geogem/internal/ui/layout"
)

type editorStub struct {
	editing bool
	seen    []tea.Msg
}

func (s *editorStub) Init() tea.Cmd { return nil }
func (s *editorStub) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.seen = append(s.seen, msg)
	return s, nil
}
func (s *editorStub) View(width, height int) string { return "editor" }
func (s *editorStub) Title() string                 { return "Edit · animals" }
func (s *editorStub) CapturingInput() bool          { return s.editing }
func (s *editorStub) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Enter", Description: "Edit"}}
}

func withStub(stub *editorStub) AppModel {
	return newAppModel(Options{Start: func(*home.Screen) screen.Screen { return stub }})
}

func TestApp_EscPopsUnlessCapturing(t *testing.T) {
	stub := &editorStub{editing: true}
	m := withStub(stub)
	require.Equal(t, 2, m.router.Depth())

	model, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	m = model.(AppModel)
	assert.Nil(t, cmd)
	require.Len(t, stub.seen, 1, "esc goes to the editing screen")

	stub.editing = false
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}

func TestApp_StatusInHeader(t *testing.T) {
	m := withStub(&editorStub{})
	model, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	model, _ = model.Update(screen.StatusMsg{Text: "score 2/5"})
	m = model.(AppModel)

	out := ansi.Strip(m.render())
	assert.Contains(t, out, "Edit · animals")
	assert.Contains(t, out, "score 2/5")
	assert.Contains(t, out, "Ctrl+C")

	model, _ = m.Update(router.PopScreenMsg{})
	assert.Empty(t, model.(AppModel).status, "status clears on navigation")
}

func TestApp_CtrlCQuits(t *testing.T) {
	m := withStub(&editorStub{})
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
