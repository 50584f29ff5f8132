package quiz

import "time"

// Report is the aggregate sent to the results sink when a quiz ends.
type Report struct {
	SessionID     string
	LearningBlock string
	Mode          Mode
	QuestionIDs   []string
	Score         int
	NumQuestions  int
	FinishedAt    time.Time
}

// ScoreApplicable is false for learn-mode reports.
func (r Report) ScoreApplicable() bool {
	return r.Score != ScoreNotApplicable
}

// Percent returns the score as a percentage of NumQuestions, or 0 when the
// score does not apply.
func (r Report) Percent() float64 {
	if !r.ScoreApplicable() || r.NumQuestions == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.NumQuestions) * 100
}

// BuildReport packages the session. Learn sessions report the learned ids and
// no score; scored sessions report every presented id.
func BuildReport(s *SessionState, finishedAt time.Time) Report {
	r := Report{
		SessionID:     s.SessionID,
		LearningBlock: s.LearningBlock,
		Mode:          s.Mode,
		NumQuestions:  s.Total(),
		FinishedAt:    finishedAt,
	}
	if s.Mode == ModeLearn {
		r.QuestionIDs = append([]string(nil), s.Learned...)
		r.Score = ScoreNotApplicable
		return r
	}
	r.QuestionIDs = s.PresentedIDs()
	r.Score = s.Total() - len(s.Incorrect)
	return r
}
