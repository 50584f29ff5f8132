package results

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/geogem/internal/quiz"
	"github.com/abhisek/geogem/internal/router"
)

type againMsg struct{}

func scored() quiz.Report {
	return quiz.Report{LearningBlock: "animals", Mode: quiz.ModeReview, QuestionIDs: []string{"1", "2", "3", "4"}, Score: 3, NumQuestions: 4}
}

func TestView_ScoredReport(t *testing.T) {
	s := New(scored(), Actions{})
	out := s.View(100, 30)
	assert.Contains(t, out, "Well done!")
	assert.Contains(t, out, "3/4")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "animals")
}

func TestView_LearnReport(t *testing.T) {
	r := quiz.Report{LearningBlock: "animals", Mode: quiz.ModeLearn, QuestionIDs: []string{"11", "12"}, Score: quiz.ScoreNotApplicable, NumQuestions: 5}
	out := New(r, Actions{}).View(100, 30)
	assert.Contains(t, out, "2 new words")
	assert.NotContains(t, out, "Score")
}

func TestButtons(t *testing.T) {
	s := New(scored(), Actions{Again: func() tea.Cmd { return func() tea.Msg { return againMsg{} } }})
	require.Len(t, s.buttons, 2)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, againMsg{}, cmd())

	s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	assert.Equal(t, 1, s.selected, "selection stops at the last button")

	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}

func TestHeadline(t *testing.T) {
	tests := []struct {
		score, total int
		want         string
	}{
		{4, 4, "Perfect score!"},
		{3, 4, "Well done!"},
		{2, 4, "Getting there"},
		{0, 4, "Keep practising"},
	}
	for _, tt := range tests {
		r := quiz.Report{Score: tt.score, NumQuestions: tt.total}
		assert.Equal(t, tt.want, headline(r))
	}
}
