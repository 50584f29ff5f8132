package layout

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestRenderHeader_ShowsTitleAndStatus(t *testing.T) {
	out := ansi.Strip(RenderHeader("Animals", "lvl 3 · 42 xp", 100))
	assert.Contains(t, out, "GeoGem")
	assert.Contains(t, out, "Animals")
	assert.Contains(t, out, "lvl 3 · 42 xp")
}

func TestRenderHelp_ListsEveryHint(t *testing.T) {
	hints := []KeyHint{{Key: "Enter", Description: "Submit"}, {Key: "n", Description: "Next card"}}
	out := ansi.Strip(RenderHelp(hints, 60))
	for _, h := range hints {
		assert.Contains(t, out, h.Key)
		assert.Contains(t, out, h.Description)
	}
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "╭"))
}

func TestIsTooSmall(t *testing.T) {
	assert.True(t, IsTooSmall(MinWidth-1, MinHeight))
	assert.False(t, IsTooSmall(MinWidth, MinHeight))
}

func TestRenderFrame_FillsHeight(t *testing.T) {
	header := RenderHeader("Home", "", 90)
	footer := RenderFooter([]KeyHint{{Key: "q", Description: "Quit"}}, 90)
	assert.Equal(t, 0, BodyHeight(header, footer, 4))

	out := RenderFrame(header, "body", footer, 90, 30)
	assert.Equal(t, 30, strings.Count(out, "\n")+1)
	assert.Contains(t, ansi.Strip(out), "body")
}
