package blockedit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/geogem/internal/remote"
	"github.com/abhisek/geogem/internal/screen"
	"github.com/abhisek/geogem/internal/store"
	"github.com/abhisek/geogem/internal/ui/components"
	"github.com/abhisek/geogem/internal/ui/layout"
	"github.com/abhisek/geogem/internal/ui/theme"
)

// Editor is the word bank surface of the GeoGem API.
type Editor interface {
	BlockWords(ctx context.Context, block string) ([]remote.DeckCard, error)
	EditField(ctx context.Context, wordID, field, value string) (remote.FieldEdit, error)
	AddBlockWords(ctx context.Context, blockID, blockSlug string) error
	ResetBlock(ctx context.Context, block string) error
}

const (
	logLines   = 6
	tableRows  = 8
	valueLimit = 200
)

// column widths, indexed like store.EditableFields with the id first
var widths = []int{5, 16, 16, 16, 24}

type wordsLoadedMsg struct {
	Words []remote.DeckCard
	Err   error
}

type fieldEditedMsg struct {
	Row  int
	Edit remote.FieldEdit
	Err  error
}

type blockChangedMsg struct {
	What string
	Err  error
}

// Screen edits the words of one block in place. Every confirmed edit is one
// request and appends a line to the change log.
type Screen struct {
	editor  Editor
	block   string
	timeout time.Duration

	words   []remote.DeckCard
	table   table.Model
	field   int // index into store.EditableFields
	input   *components.TextInput
	editRow int

	log          []string
	notice       string
	loaded       bool
	confirmReset bool
	pending      int
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.InputCapturer = (*Screen)(nil)

// New creates the editor for block.
func New(editor Editor, block string, timeout time.Duration) *Screen {
	cols := []table.Column{{Title: "ID", Width: widths[0]}}
	for i, f := range store.EditableFields {
		cols = append(cols, table.Column{Title: f, Width: widths[i+1]})
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithHeight(tableRows),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(theme.TextDim).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(theme.Border)
	styles.Selected = styles.Selected.Foreground(theme.Primary)
	t.SetStyles(styles)

	return &Screen{editor: editor, block: block, timeout: timeout, table: t}
}

func (s *Screen) Init() tea.Cmd {
	editor, block, timeout := s.editor, s.block, s.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(remote.WithPurpose(context.Background(), "block-edit"), timeout)
		defer cancel()
		words, err := editor.BlockWords(ctx, block)
		return wordsLoadedMsg{Words: words, Err: err}
	}
}

func (s *Screen) Title() string {
	return "Edit · " + s.block
}

func (s *Screen) CapturingInput() bool {
	return s.input != nil
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.input != nil {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Word"},
		{Key: "←→", Description: "Field"},
		{Key: "Enter", Description: "Edit"},
		{Key: "a", Description: "Add word"},
		{Key: "R", Description: "Reset progress"},
		{Key: "Esc", Description: "Back"},
	}
}

// Field returns the column currently targeted by edits.
func (s *Screen) Field() string {
	return store.EditableFields[s.field]
}

// Log returns the change log, oldest first.
func (s *Screen) Log() []string {
	return append([]string(nil), s.log...)
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case wordsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.notice = msg.Err.Error()
			return s, nil
		}
		s.words = msg.Words
		s.syncRows()
		return s, nil

	case fieldEditedMsg:
		s.pending--
		if msg.Err != nil {
			s.notice = "Edit failed: " + msg.Err.Error()
			return s, nil
		}
		s.log = append(s.log, msg.Edit.LogLine())
		if msg.Row >= 0 && msg.Row < len(s.words) {
			setField(&s.words[msg.Row], msg.Edit.ChangedField, msg.Edit.NewValue)
			s.syncRows()
		}
		return s, nil

	case blockChangedMsg:
		s.pending--
		if msg.Err != nil {
			s.notice = msg.What + " failed: " + msg.Err.Error()
			return s, nil
		}
		s.log = append(s.log, fmt.Sprintf("%s at %s", msg.What, time.Now().Format(time.TimeOnly)))
		return s, s.Init()

	case tea.KeyMsg:
		if s.input != nil {
			return s, s.updateInput(msg)
		}
		return s, s.handleKey(msg)
	}

	if s.input != nil {
		in, cmd := s.input.Update(msg)
		s.input = &in
		return s, cmd
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key != "R" {
		s.confirmReset = false
	}
	switch key {
	case "up", "down", "k", "j":
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return cmd
	case "left", "h":
		s.field = (s.field + len(store.EditableFields) - 1) % len(store.EditableFields)
	case "right", "l", "tab":
		s.field = (s.field + 1) % len(store.EditableFields)
	case "enter":
		return s.openInput()
	case "a":
		return s.addWord()
	case "R":
		if !s.confirmReset {
			s.confirmReset = true
			s.notice = "Press R again to delete your progress on this block."
			return nil
		}
		s.confirmReset = false
		return s.reset()
	}
	return nil
}

func (s *Screen) openInput() tea.Cmd {
	row := s.table.Cursor()
	if row < 0 || row >= len(s.words) {
		return nil
	}
	s.notice = ""
	s.editRow = row
	in := components.NewTextInput(s.Field(), getField(s.words[row], s.Field()), valueLimit)
	s.input = &in
	return in.Init()
}

func (s *Screen) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.input = nil
		return nil
	case "enter":
		value := s.input.Value()
		s.input = nil
		word := s.words[s.editRow]
		if value == getField(word, s.Field()) {
			return nil
		}
		return s.edit(s.editRow, word.ID, s.Field(), value)
	}
	in, cmd := s.input.Update(msg)
	s.input = &in
	return cmd
}

func (s *Screen) edit(row int, wordID, field, value string) tea.Cmd {
	editor, timeout := s.editor, s.timeout
	s.pending++
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(remote.WithPurpose(context.Background(), "block-edit"), timeout)
		defer cancel()
		e, err := editor.EditField(ctx, wordID, field, value)
		return fieldEditedMsg{Row: row, Edit: e, Err: err}
	}
}

func (s *Screen) addWord() tea.Cmd {
	editor, block, timeout := s.editor, s.block, s.timeout
	s.pending++
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(remote.WithPurpose(context.Background(), "block-edit"), timeout)
		defer cancel()
		return blockChangedMsg{What: "added a word", Err: editor.AddBlockWords(ctx, "", block)}
	}
}

func (s *Screen) reset() tea.Cmd {
	editor, block, timeout := s.editor, s.block, s.timeout
	s.pending++
	s.notice = ""
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(remote.WithPurpose(context.Background(), "block-edit"), timeout)
		defer cancel()
		return blockChangedMsg{What: "reset progress", Err: editor.ResetBlock(ctx, block)}
	}
}

func (s *Screen) syncRows() {
	rows := make([]table.Row, len(s.words))
	for i, w := range s.words {
		rows[i] = table.Row{w.ID, w.Prompt, w.Transliteration, w.Translation, w.Example}
	}
	s.table.SetRows(rows)
}

func getField(w remote.DeckCard, field string) string {
	switch field {
	case "name":
		return w.Prompt
	case "transliteration":
		return w.Transliteration
	case "translation":
		return w.Translation
	case "example":
		return w.Example
	}
	return ""
}

func setField(w *remote.DeckCard, field, value string) {
	switch field {
	case "name":
		w.Prompt = value
	case "transliteration":
		w.Transliteration = value
	case "translation":
		w.Translation = value
	case "example":
		w.Example = value
	}
}

func (s *Screen) View(width, height int) string {
	if !s.loaded {
		return layout.Center("\n\n"+theme.Hint.Render("Loading words..."), width)
	}

	var b strings.Builder
	b.WriteString(s.table.View())
	b.WriteString("\n\n")

	fieldLine := theme.Hint.Render("editing column ") + theme.Selected.Render(s.Field())
	if s.pending > 0 {
		fieldLine += theme.Hint.Render("  saving...")
	}
	b.WriteString(fieldLine)
	b.WriteString("\n")

	if s.input != nil {
		b.WriteString(s.input.View())
		b.WriteString("\n")
	}
	if s.notice != "" {
		b.WriteString(theme.Notice.Render(s.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Body.Render("Changes"))
	start := max(len(s.log)-logLines, 0)
	for _, line := range s.log[start:] {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(line))
	}
	if len(s.log) == 0 {
		b.WriteString("\n" + theme.Hint.Render("none yet"))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
