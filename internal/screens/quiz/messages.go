package quiz

import (
	qz "github.com/abhisek/geogem/internal/quiz"
	"github.com/abhisek/geogem/internal/remote"
)

// deckLoadedMsg carries the fetched deck.
type deckLoadedMsg struct {
	Deck remote.Deck
	Err  error
}

// answerCheckedMsg is sent when a SubmitAnswer round trip returns.
type answerCheckedMsg struct {
	Outcome qz.Outcome
	Err     error
}

// learnedMsg is sent when a RecordLearned round trip returns.
type learnedMsg struct {
	Outcome qz.LearnOutcome
	Err     error
}

// finalizedMsg is sent when a Finalize round trip returns.
type finalizedMsg struct {
	Report qz.Report
	Err    error
}

// burstTickMsg advances the "+1" fade. Seq ties the tick to one burst.
type burstTickMsg struct {
	Seq int
}

// reportSavedMsg confirms the local history write.
type reportSavedMsg struct {
	Err error
}
