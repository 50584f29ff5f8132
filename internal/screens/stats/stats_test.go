package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/geogem/internal/remote"
	"github.com/abhisek/geogem/internal/screen"
	"github.com/abhisek/geogem/internal/store"
)

type fakeSource struct {
	stats remote.BlockStats
	err   error
	calls int
}

func (f *fakeSource) BlockStats(context.Context, string) (remote.BlockStats, error) {
	f.calls++
	return f.stats, f.err
}

type fakeReports struct{ recs []store.ReportRecord }

func (f *fakeReports) SaveReport(context.Context, store.ReportRecord) error { return nil }
func (f *fakeReports) ListReports(context.Context, int) ([]store.ReportRecord, error) {
	return f.recs, nil
}
func (f *fakeReports) ReportsForBlock(context.Context, string, int) ([]store.ReportRecord, error) {
	return f.recs, nil
}

func load(t *testing.T, s *Screen) tea.Cmd {
	t.Helper()
	_, cmd := s.Update(s.Init()())
	return cmd
}

func TestStats_RendersCharts(t *testing.T) {
	src := &fakeSource{stats: remote.BlockStats{
		LearningBlock: "animals", NumWords: 5, NumLearned: 3,
		MasteryLevel: 1.4, Levels: []int{1, 2, 4}, Experience: 42, ProfileLevel: 3,
	}}
	reports := &fakeReports{recs: []store.ReportRecord{
		{Mode: "review", Score: 4, NumQuestions: 5, FinishedAt: time.Now()},
		{Mode: "learn", Score: -1, QuestionIDs: []string{"1", "2"}, FinishedAt: time.Now()},
	}}
	s := New(src, reports, "animals", time.Second)

	cmd := load(t, s)
	require.NotNil(t, cmd)
	status, ok := cmd().(screen.StatusMsg)
	require.True(t, ok)
	assert.Equal(t, "lvl 3 · 42 xp", status.Text)

	out := s.View(100, 40)
	assert.Contains(t, out, "3 of 5 words learned")
	assert.Contains(t, out, "Block level 1")
	assert.Contains(t, out, "40% to level 2")
	assert.Contains(t, out, "overall 20%")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "█")
	assert.Contains(t, out, "4/5")
	assert.Contains(t, out, "2 learned")
}

func TestStats_Error(t *testing.T) {
	s := New(&fakeSource{err: errors.New("boom")}, nil, "animals", time.Second)
	load(t, s)
	assert.Contains(t, s.View(100, 30), "boom")
}

func TestStats_Refresh(t *testing.T) {
	src := &fakeSource{stats: remote.BlockStats{LearningBlock: "animals"}}
	s := New(src, nil, "animals", time.Second)
	load(t, s)

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	require.NotNil(t, cmd)
	assert.False(t, s.loaded)
	s.Update(cmd())
	assert.Equal(t, 2, src.calls)
	assert.True(t, s.loaded)
}
