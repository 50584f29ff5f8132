package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/geogem/internal/quiz"
	"github.com/abhisek/geogem/internal/remote"
	"github.com/abhisek/geogem/internal/router"
	"github.com/abhisek/geogem/internal/screen"
	"github.com/abhisek/geogem/internal/screens/blockedit"
	"github.com/abhisek/geogem/internal/screens/history"
	quizscreen "github.com/abhisek/geogem/internal/screens/quiz"
	"github.com/abhisek/geogem/internal/screens/results"
	"github.com/abhisek/geogem/internal/screens/stats"
	"github.com/abhisek/geogem/internal/store"
	"github.com/abhisek/geogem/internal/ui/components"
	"github.com/abhisek/geogem/internal/ui/layout"
	"github.com/abhisek/geogem/internal/ui/theme"
)

// Backend is everything the screens need from the GeoGem API.
type Backend interface {
	quizscreen.Backend
	stats.Source
	blockedit.Editor
	Blocks(ctx context.Context) ([]remote.BlockSummary, error)
}

// Deps wires the screens reachable from home.
type Deps struct {
	Backend  Backend
	Reports  store.ReportRepo
	Examples quiz.ExampleSource
	Timeout  time.Duration
}

type blocksLoadedMsg struct {
	Blocks []remote.BlockSummary
	Err    error
}

// Screen lists the learning blocks and starts quizzes on them.
type Screen struct {
	deps   Deps
	blocks []remote.BlockSummary
	menu   components.Menu
	loaded bool
	errMsg string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the home screen.
func New(deps Deps) *Screen {
	if deps.Timeout <= 0 {
		deps.Timeout = quiz.DefaultTimeout
	}
	return &Screen{deps: deps}
}

func (h *Screen) Init() tea.Cmd {
	backend, timeout := h.deps.Backend, h.deps.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(remote.WithPurpose(context.Background(), "home"), timeout)
		defer cancel()
		blocks, err := backend.Blocks(ctx)
		return blocksLoadedMsg{Blocks: blocks, Err: err}
	}
}

func (h *Screen) Title() string {
	return "Blocks"
}

func (h *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "l", Description: "Learn"},
		{Key: "Enter", Description: "Quiz"},
		{Key: "r", Description: "Review"},
		{Key: "s", Description: "Stats"},
		{Key: "e", Description: "Edit"},
		{Key: "h", Description: "History"},
		{Key: "q", Description: "Quit"},
	}
}

func (h *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case blocksLoadedMsg:
		h.loaded = true
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.setBlocks(msg.Blocks)
		return h, nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q":
			return h, tea.Quit
		case "h":
			return h, router.Push(history.New(h.deps.Reports))
		case "g":
			h.loaded = false
			return h, h.Init()
		}
		item, ok := h.menu.Current()
		if !ok || item.Disabled {
			var cmd tea.Cmd
			h.menu, cmd = h.menu.Update(msg)
			return h, cmd
		}
		slug := h.blocks[h.menu.Selected].Slug
		switch key {
		case "l":
			return h, router.Push(h.Quiz(quiz.ModeLearn, slug))
		case "r":
			return h, router.Push(h.Quiz(quiz.ModeReview, slug))
		case "s":
			return h, router.Push(h.Stats(slug))
		case "e":
			return h, router.Push(h.Edit(slug))
		}
		var cmd tea.Cmd
		h.menu, cmd = h.menu.Update(msg)
		return h, cmd
	}
	return h, nil
}

func (h *Screen) setBlocks(blocks []remote.BlockSummary) {
	h.blocks = blocks
	items := make([]components.MenuItem, len(blocks))
	for i, b := range blocks {
		slug := b.Slug
		items[i] = components.MenuItem{
			Label:    b.Name,
			Detail:   fmt.Sprintf("%d/%d learned", b.NumLearned, b.NumWords),
			Disabled: b.NumWords == 0,
			Action: func() tea.Cmd {
				return router.Push(h.Quiz(quiz.ModeMultipleChoice, slug))
			},
		}
	}
	selected := h.menu.Selected
	h.menu = components.NewMenu(items)
	if selected < len(items) && !items[selected].Disabled {
		h.menu.Selected = selected
	}
}

// Quiz builds a quiz screen whose results offer a rerun and the block stats.
func (h *Screen) Quiz(mode quiz.Mode, block string) screen.Screen {
	return quizscreen.New(h.deps.Backend, mode, block, quizscreen.Options{
		Examples: h.deps.Examples,
		Timeout:  h.deps.Timeout,
		Reports:  h.deps.Reports,
		Results: func(r quiz.Report) screen.Screen {
			return results.New(r, results.Actions{
				Again: func() tea.Cmd { return router.Replace(h.Quiz(mode, block)) },
				Stats: func() tea.Cmd { return router.Replace(h.Stats(block)) },
			})
		},
	})
}

// Edit builds the word editor of block.
func (h *Screen) Edit(block string) screen.Screen {
	return blockedit.New(h.deps.Backend, block, h.deps.Timeout)
}

// Stats builds the stats screen of block.
func (h *Screen) Stats(block string) screen.Screen {
	return stats.New(h.deps.Backend, h.deps.Reports, block, h.deps.Timeout)
}

func (h *Screen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, height < 20))

	switch {
	case h.errMsg != "":
		sections = append(sections,
			theme.Notice.Width(cw).Render("Could not load blocks: "+h.errMsg),
			theme.Hint.Render("g to retry"))
	case !h.loaded:
		sections = append(sections, theme.Hint.Render("Loading blocks..."))
	case len(h.blocks) == 0:
		sections = append(sections, theme.Hint.Render("No learning blocks yet. Seed the server with `geogem serve --seed`."))
	default:
		sections = append(sections, components.CardBox(h.menu.View(), cw, false))
		if d := h.blocks[h.menu.Selected].Description; d != "" {
			sections = append(sections, theme.Hint.Width(cw).Render(d))
		}
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n\n"))
}
