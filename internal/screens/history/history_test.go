package history

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/geogem/internal/store"
)

func TestHistory_ListsStoredReports(t *testing.T) {
	st, err := store.Open("file:history_screen?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	finished := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.ReportRepo().SaveReport(ctx, store.ReportRecord{
		SessionID: "s1", LearningBlock: "animals", Mode: "review",
		QuestionIDs: []string{"3", "4"}, Score: 1, NumQuestions: 2, Delivered: true, FinishedAt: finished,
	}))
	require.NoError(t, st.ReportRepo().SaveReport(ctx, store.ReportRecord{
		SessionID: "s2", LearningBlock: "animals", Mode: "learn",
		QuestionIDs: []string{"9"}, Score: -1, NumQuestions: 5, FinishedAt: finished.Add(time.Hour),
	}))

	s := New(st.ReportRepo())
	s.Update(s.Init()())
	require.Len(t, s.reports, 2)

	out := s.View(120, 30)
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "1 learned")

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Contains(t, s.View(120, 30), "not delivered", "newest first, the undelivered learn quiz")
}

func TestHistory_NilRepo(t *testing.T) {
	s := New(nil)
	s.Update(s.Init()())
	assert.Contains(t, s.View(100, 30), "No quizzes yet")
}

func TestLine(t *testing.T) {
	r := store.ReportRecord{LearningBlock: "food", Mode: "multiple_choice", Score: 7, NumQuestions: 10, Delivered: true}
	assert.Contains(t, Line(r), "7/10")
	assert.NotContains(t, Line(r), "!")
}
