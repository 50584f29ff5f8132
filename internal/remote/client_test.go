package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/geogem/internal/quiz"
	"github.com/abhisek/geogem/internal/store"
)

// fakeServer records posted forms and serves canned bodies per path.
type fakeServer struct {
	t *testing.T

	mu      sync.Mutex
	forms   map[string]url.Values
	queries map[string]url.Values
	headers map[string]http.Header
	bodies  map[string]string
	status  map[string]int
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	fs := &fakeServer{
		t:       t,
		forms:   map[string]url.Values{},
		queries: map[string]url.Values{},
		headers: map[string]http.Header{},
		bodies:  map[string]string{},
		status:  map[string]int{},
	}
	srv := httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(srv.Close)
	return fs, srv
}

func (fs *fakeServer) reply(path string, status int, body string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.status[path] = status
	fs.bodies[path] = body
}

func (fs *fakeServer) form(path string) url.Values {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.forms[path]
}

func (fs *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/csrf/" {
		http.SetCookie(w, &http.Cookie{Name: CSRFCookie, Value: "tok-1", Path: "/"})
		w.WriteHeader(http.StatusOK)
		return
	}
	_ = r.ParseForm()
	fs.mu.Lock()
	fs.forms[r.URL.Path] = r.PostForm
	fs.queries[r.URL.Path] = r.URL.Query()
	fs.headers[r.URL.Path] = r.Header.Clone()
	status, ok := fs.status[r.URL.Path]
	body := fs.bodies[r.URL.Path]
	fs.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}
}

func newTestClient(t *testing.T, srvURL, apiVersion string, repo store.EventRepo) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL:    srvURL,
		APIVersion: apiVersion,
		Timeout:    2 * time.Second,
		UserAgent:  "geogem-test",
		Retry:      fastRetry(),
	}, repo)
	require.NoError(t, err)
	return c
}

func TestParseBaseURL(t *testing.T) {
	u, err := ParseBaseURL("https://geogem.example/app")
	require.NoError(t, err)
	assert.Equal(t, "https://geogem.example/app/", u.String())

	_, err = ParseBaseURL("ftp://geogem.example/")
	assert.Error(t, err)
	_, err = ParseBaseURL("http://")
	assert.Error(t, err)
}

func TestLegacyAnswers(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"", false},
		{"v1", true},
		{"1.4", true},
		{"v2", false},
		{"2.1.0", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LegacyAnswers(tt.version), "version %q", tt.version)
	}
}

func TestCheckAnswer_CanonicalBody(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("/quizzer/check_answer/", 200, `{"is_correct": true, "example_span": "<span>ძაღლი</span>"}`)
	c := newTestClient(t, srv.URL, "v2", nil)

	v, err := c.CheckAnswer(context.Background(), quiz.AnswerSubmission{Mode: quiz.ModeMultipleChoice, QuestionID: "7", Value: "dog"})
	require.NoError(t, err)
	assert.True(t, v.Correct)
	assert.Equal(t, "<span>ძაღლი</span>", v.Example)

	form := fs.form("/quizzer/check_answer/")
	assert.Equal(t, "multiple_choice", form.Get("quiz_type"))
	assert.Equal(t, "7", form.Get("question_id"))
	assert.Equal(t, "dog", form.Get("answer"))
	assert.Equal(t, "tok-1", form.Get("csrfmiddlewaretoken"))

	fs.mu.Lock()
	hdr := fs.headers["/quizzer/check_answer/"]
	q := fs.queries["/quizzer/check_answer/"]
	fs.mu.Unlock()
	assert.Equal(t, "tok-1", hdr.Get("X-CSRFToken"))
	assert.Equal(t, "XMLHttpRequest", hdr.Get("X-Requested-With"))
	assert.Empty(t, q.Get("legacy"))
}

func TestCheckAnswer_LegacyBody(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("/quizzer/check_answer/", 200, `"[{\"success\": \"false\", \"example_span\": \"\"}]"`)
	c := newTestClient(t, srv.URL, "v1", nil)

	v, err := c.CheckAnswer(context.Background(), quiz.AnswerSubmission{Mode: quiz.ModeReview, QuestionID: "3", Value: "cat"})
	require.NoError(t, err)
	assert.False(t, v.Correct)

	fs.mu.Lock()
	q := fs.queries["/quizzer/check_answer/"]
	fs.mu.Unlock()
	assert.Equal(t, "true", q.Get("legacy"))
}

func TestDecodeVerdict(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		correct bool
		example string
		wantErr bool
	}{
		{"object", `{"is_correct": false}`, false, "", false},
		{"legacy string", `"[{\"success\": \"true\", \"example_span\": \"ex\"}]"`, true, "ex", false},
		{"bare array", `[{"success": true}]`, true, "", false},
		{"empty array", `[]`, false, "", true},
		{"missing field", `{"example_span": "x"}`, false, "", true},
		{"number", `42`, false, "", true},
		{"empty", ``, false, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := decodeVerdict(&Result{Body: []byte(tt.body)})
			if tt.wantErr {
				var valErr *ValidationError
				assert.ErrorAs(t, err, &valErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.correct, v.Correct)
			assert.Equal(t, tt.example, v.Example)
		})
	}
}

func TestAddToLearned(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("/quizzer/add_to_learned/", 200, `{"created": true, "user_word_id": 41, "is_last": true}`)
	c := newTestClient(t, srv.URL, "", nil)

	res, err := c.AddToLearned(context.Background(), quiz.LearnRequest{LearningBlock: "animals", QuestionID: "9", IsLast: true})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "41", res.LearnedID)
	assert.True(t, res.IsLast)

	form := fs.form("/quizzer/add_to_learned/")
	assert.Equal(t, "true", form.Get("is_last"))
	assert.Equal(t, "animals", form.Get("learning_block"))
}

func TestAddToLearned_AnonymousLearner(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("/quizzer/add_to_learned/", 200, `{"created": false, "user_word_id": null, "is_last": false}`)
	c := newTestClient(t, srv.URL, "", nil)

	res, err := c.AddToLearned(context.Background(), quiz.LearnRequest{LearningBlock: "animals", QuestionID: "9"})
	require.NoError(t, err)
	assert.Empty(t, res.LearnedID)
}

func TestSubmitResults(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("/quizzer/results/", 200, `<html>ok</html>`)
	c := newTestClient(t, srv.URL, "", nil)

	err := c.SubmitResults(context.Background(), quiz.Report{
		LearningBlock: "animals",
		Mode:          quiz.ModeReview,
		QuestionIDs:   []string{"1", "2", "3", "4"},
		Score:         3,
		NumQuestions:  4,
	})
	require.NoError(t, err)

	form := fs.form("/quizzer/results/")
	assert.Equal(t, "1,2,3,4", form.Get("quiz_words"))
	assert.Equal(t, "3", form.Get("quiz_score"))
	assert.Equal(t, "4", form.Get("num_questions"))
	assert.Equal(t, "review", form.Get("quiz_mode"))
	assert.Equal(t, "review", form.Get("quiz_type"))
}

func TestFetchDeck(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("/quizzer/multiple_choice/", 200, `{"mode": "multiple_choice", "cards": [
		{"id": "1", "prompt": "ძაღლი", "options": ["dog", "cat", "cow", "fox"]},
		{"id": "2", "prompt": "კატა", "options": ["cat", "dog", "cow", "fox"]}
	]}`)
	c := newTestClient(t, srv.URL, "", nil)

	deck, err := c.FetchDeck(context.Background(), quiz.ModeMultipleChoice, "animals")
	require.NoError(t, err)
	assert.Equal(t, "animals", deck.LearningBlock)
	cards := deck.QuizCards()
	require.Len(t, cards, 2)
	assert.Len(t, cards[0].Options, 4)
	assert.Equal(t, "dog", cards[0].Options[0].Value)
}

func TestFetchDeck_EmptyBlockIsNotFound(t *testing.T) {
	_, srv := newFakeServer(t)
	c := newTestClient(t, srv.URL, "", nil)

	_, err := c.FetchDeck(context.Background(), quiz.ModeReview, "nothing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestDeckQuizCards_LearnUsesTranslation(t *testing.T) {
	d := Deck{Cards: []DeckCard{{ID: "5", Prompt: "ცხენი", Translation: "horse"}}}
	cards := d.QuizCards()
	require.Len(t, cards[0].Options, 1)
	assert.Equal(t, "horse", cards[0].Options[0].Value)
}

func TestEditField(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("/learn/edit_word_info/", 200, `{"success": true, "changed_field": "translation", "old_value": "dgo", "new_value": "dog", "updated_at": "12:01"}`)
	c := newTestClient(t, srv.URL, "", nil)

	edit, err := c.EditField(context.Background(), "12", "translation", "dog")
	require.NoError(t, err)
	assert.Equal(t, `id 12: column "translation". "dgo" -> "dog" at 12:01`, edit.LogLine())
	assert.Equal(t, "dog", fs.form("/learn/edit_word_info/").Get("new_value"))
}

func TestEditField_Refused(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("/learn/edit_word_info/", 200, `{"success": false}`)
	c := newTestClient(t, srv.URL, "", nil)

	_, err := c.EditField(context.Background(), "12", "name", "x")
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestResetBlockAndAddWords(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("/learn/reset_test_block/", 200, `{"success": true}`)
	fs.reply("/learn/add_word_info/", 200, `{"success": true}`)
	c := newTestClient(t, srv.URL, "", nil)

	require.NoError(t, c.ResetBlock(context.Background(), "animals"))
	require.NoError(t, c.AddBlockWords(context.Background(), "3", "animals"))
	assert.Equal(t, "animals", fs.form("/learn/add_word_info/").Get("learning_block_slug"))
}

func TestBlockStatsAndBlocks(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("/learn/animals/stats/", 200, `{"learning_block": "animals", "num_words": 4, "num_learned": 2, "mastery_level": 0.25, "levels": [0, 1]}`)
	fs.reply("/learn/blocks/", 200, `[{"slug": "animals", "name": "Animals", "num_words": 4}]`)
	c := newTestClient(t, srv.URL, "", nil)

	stats, err := c.BlockStats(context.Background(), "animals")
	require.NoError(t, err)
	assert.Equal(t, 0.25, stats.MasteryLevel)
	assert.Equal(t, []int{0, 1}, stats.Levels)

	blocks, err := c.Blocks(context.Background())
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Animals", blocks[0].Name)
}

func TestServerErrorIsRetriedThenNetworkError(t *testing.T) {
	var calls int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, CSRFToken: "static", Retry: fastRetry()}, nil)
	require.NoError(t, err)

	_, err = c.CheckAnswer(context.Background(), quiz.AnswerSubmission{Mode: quiz.ModeReview, QuestionID: "1", Value: "a"})
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusBadGateway, netErr.StatusCode)
	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()
}

func TestTimeoutIsClassified(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(Config{BaseURL: srv.URL, CSRFToken: "static", Retry: RetryConfig{MaxAttempts: 1}}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.CheckAnswer(ctx, quiz.AnswerSubmission{Mode: quiz.ModeReview, QuestionID: "1", Value: "a"})
	var toErr *TimeoutError
	assert.ErrorAs(t, err, &toErr)
	assert.Equal(t, KindTimeout, Kind(err))
}

func TestRetryBudget(t *testing.T) {
	cfg := DefaultRetryConfig()
	per := cfg.Budget(10 * time.Second)
	assert.Less(t, per, 10*time.Second/3+time.Millisecond)
	assert.Greater(t, per, 2*time.Second)

	// backoff larger than the deadline falls back to an even split
	assert.Equal(t, 100*time.Millisecond, cfg.Budget(300*time.Millisecond))
	assert.Equal(t, time.Second, RetryConfig{MaxAttempts: 1}.Budget(time.Second))
}

func TestControllerRetriesHungAttemptWithinDeadline(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
			return
		}
		w.Write([]byte(`{"is_correct": true}`))
	}))
	defer srv.Close()

	// wired the same way the CLI wires the TUI: one timeout for both
	const timeout = 600 * time.Millisecond
	client, err := New(Config{
		BaseURL:   srv.URL,
		CSRFToken: "static",
		Timeout:   timeout,
		Retry:     RetryConfig{MaxAttempts: 3, InitialWait: 10 * time.Millisecond, MaxWait: 20 * time.Millisecond, Multiplier: 2},
	}, nil)
	require.NoError(t, err)

	state, err := quiz.NewSessionState("animals", quiz.ModeMultipleChoice, []quiz.Card{
		{ID: "1", Prompt: "ძაღლი", Options: []quiz.Option{{Value: "dog"}, {Value: "cat"}}},
	})
	require.NoError(t, err)
	ctrl := quiz.NewController(state, quiz.Options{Validator: client, Sink: client, Timeout: timeout})

	out, err := ctrl.SubmitAnswer(context.Background(), "1", "dog", quiz.Point{})
	require.NoError(t, err)
	assert.True(t, out.Correct)
	mu.Lock()
	assert.Equal(t, 2, calls)
	mu.Unlock()
}

func TestLoggingRecordsRequestEvents(t *testing.T) {
	s, err := store.Open("file:remote_logging?mode=memory&cache=shared")
	require.NoError(t, err)
	defer s.Close()

	fs, srv := newFakeServer(t)
	fs.reply("/quizzer/check_answer/", 200, `{"is_correct": true}`)
	c := newTestClient(t, srv.URL, "", s.EventRepo())

	ctx := WithPurpose(context.Background(), "quiz")
	_, err = c.CheckAnswer(ctx, quiz.AnswerSubmission{Mode: quiz.ModeReview, QuestionID: "1", Value: "a"})
	require.NoError(t, err)
	_, err = c.FetchDeck(ctx, quiz.ModeReview, "missing")
	require.Error(t, err)

	events, err := s.EventRepo().QueryRequests(context.Background(), store.QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Newest first.
	assert.Equal(t, "fetch_deck", events[0].Operation)
	assert.False(t, events[0].Success)
	assert.Equal(t, KindValidation, events[0].ErrorKind)
	assert.Equal(t, 404, events[0].StatusCode)

	assert.Equal(t, "check_answer", events[1].Operation)
	assert.True(t, events[1].Success)
	assert.Equal(t, "quiz", events[1].Purpose)
	assert.Equal(t, "remote", events[1].Target)
	assert.True(t, strings.Contains(events[1].RequestBody, "question_id=1"))
	assert.NotContains(t, events[1].RequestBody, "csrfmiddlewaretoken")
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "", Kind(errors.New("plain")))
	assert.Equal(t, KindNetwork, Kind(&NetworkError{Op: "x", Err: errors.New("down")}))
	assert.Equal(t, KindValidation, Kind(&ValidationError{Op: "x", Err: errors.New("bad")}))
	assert.True(t, Retryable(&TimeoutError{Op: "x"}))
	assert.False(t, Retryable(&ValidationError{Op: "x", Err: errors.New("bad")}))
}
