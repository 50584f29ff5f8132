package quiz

import "sync"

// Renderer receives the presentation effects of controller transitions.
// Implementations must not call back into the Controller.
type Renderer interface {
	ShowCard(card Card)
	HideCard(card Card)
	MarkOption(questionID, value string, mark Mark)
	LockCard(questionID string)
	PlaySuccess()
	Burst(at Point, text string)
	ShowExample(questionID, example string)
	Score(score, total int)
	Notice(err error)
	Finished(report Report)
}

// NopRenderer discards every effect.
type NopRenderer struct{}

func (NopRenderer) ShowCard(Card) {}
func (NopRenderer) HideCard(Card) {}
func (NopRenderer) MarkOption(string, string, Mark) {}
func (NopRenderer) LockCard(string) {}
func (NopRenderer) PlaySuccess() {}
func (NopRenderer) Burst(Point, string) {}
func (NopRenderer) ShowExample(string, string) {}
func (NopRenderer) Score(int, int) {}
func (NopRenderer) Notice(error) {}
func (NopRenderer) Finished(Report) {}

// Effect kinds recorded by RecordingRenderer.
const (
	EffectShow     = "show"
	EffectHide     = "hide"
	EffectMark     = "mark"
	EffectLock     = "lock"
	EffectSuccess  = "success"
	EffectBurst    = "burst"
	EffectExample  = "example"
	EffectScore    = "score"
	EffectNotice   = "notice"
	EffectFinished = "finished"
)

// Effect is one recorded renderer call.
type Effect struct {
	Kind       string
	QuestionID string
	Value      string
	Mark       Mark
	At         Point
	Text       string
	Score      int
	Total      int
	Err        error
	Report     *Report
}

// RecordingRenderer stores every effect in call order. It is safe for use
// from background commands; the TUI drains it after each round trip.
type RecordingRenderer struct {
	mu      sync.Mutex
	effects []Effect
}

func (r *RecordingRenderer) add(e Effect) {
	r.mu.Lock()
	r.effects = append(r.effects, e)
	r.mu.Unlock()
}

// Effects returns a copy of everything recorded so far.
func (r *RecordingRenderer) Effects() []Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Effect(nil), r.effects...)
}

// Drain returns and clears the recorded effects.
func (r *RecordingRenderer) Drain() []Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.effects
	r.effects = nil
	return out
}

// Kinds lists the recorded effect kinds in order.
func (r *RecordingRenderer) Kinds() []string {
	effects := r.Effects()
	kinds := make([]string, len(effects))
	for i, e := range effects {
		kinds[i] = e.Kind
	}
	return kinds
}

func (r *RecordingRenderer) ShowCard(c Card) {
	r.add(Effect{Kind: EffectShow, QuestionID: c.ID})
}

func (r *RecordingRenderer) HideCard(c Card) {
	r.add(Effect{Kind: EffectHide, QuestionID: c.ID})
}

func (r *RecordingRenderer) MarkOption(id, value string, m Mark) {
	r.add(Effect{Kind: EffectMark, QuestionID: id, Value: value, Mark: m})
}

func (r *RecordingRenderer) LockCard(id string) {
	r.add(Effect{Kind: EffectLock, QuestionID: id})
}

func (r *RecordingRenderer) PlaySuccess() {
	r.add(Effect{Kind: EffectSuccess})
}

func (r *RecordingRenderer) Burst(at Point, text string) {
	r.add(Effect{Kind: EffectBurst, At: at, Text: text})
}

func (r *RecordingRenderer) ShowExample(id, example string) {
	r.add(Effect{Kind: EffectExample, QuestionID: id, Text: example})
}

func (r *RecordingRenderer) Score(score, total int) {
	r.add(Effect{Kind: EffectScore, Score: score, Total: total})
}

func (r *RecordingRenderer) Notice(err error) {
	r.add(Effect{Kind: EffectNotice, Err: err})
}

func (r *RecordingRenderer) Finished(rep Report) {
	r.add(Effect{Kind: EffectFinished, Report: &rep})
}
