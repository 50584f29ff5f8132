// Package remote talks to the GeoGem server: answer checks, learned words,
// quiz results and the word bank editor. Every call is a form POST (or a
// GET for read-only data) carrying the Django anti-forgery token.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/geogem/internal/quiz"
	"github.com/abhisek/geogem/internal/store"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the site root, e.g. "https://geogem.example/".
	BaseURL string

	// APIVersion selects the answer-check variant. Versions below v2 get the
	// legacy string-wrapped response.
	APIVersion string

	// CSRFToken, when set, is used as is. Otherwise the token is read from
	// the csrftoken cookie.
	CSRFToken string

	// Timeout bounds one operation including its retries. Each attempt gets
	// Retry.Budget(Timeout) unless Retry.AttemptTimeout is set.
	Timeout time.Duration

	UserAgent string
	Retry     RetryConfig
}

// Client implements quiz.Validator, quiz.Learner and quiz.ResultsSink.
type Client struct {
	doer   Doer
	legacy bool
}

var (
	_ quiz.Validator   = (*Client)(nil)
	_ quiz.Learner     = (*Client)(nil)
	_ quiz.ResultsSink = (*Client)(nil)
)

// New builds a Client with the standard middleware:
// caller → retry → logging → HTTP. eventRepo may be nil to skip logging.
func New(cfg Config, eventRepo store.EventRepo) (*Client, error) {
	base, err := ParseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	// cfg.Timeout is what the learner waits for one operation, retries
	// included.
	retry := cfg.Retry
	if cfg.Timeout > 0 && retry.AttemptTimeout == 0 {
		retry.AttemptTimeout = retry.Budget(cfg.Timeout)
	}
	httpClient := &http.Client{Jar: jar, Timeout: retry.AttemptTimeout}

	var tokens TokenSource = StaticToken(cfg.CSRFToken)
	if cfg.CSRFToken == "" {
		tokens = NewCookieTokenSource(base, httpClient)
	}

	var d Doer = NewHTTPDoer(base, httpClient, tokens, cfg.UserAgent)
	if eventRepo != nil {
		d = WithLogging(d, eventRepo)
	}
	d = WithRetry(d, retry)

	return NewWithDoer(d, cfg.APIVersion), nil
}

// NewWithDoer builds a Client over an existing Doer.
func NewWithDoer(d Doer, apiVersion string) *Client {
	return &Client{doer: d, legacy: LegacyAnswers(apiVersion)}
}

// ParseBaseURL validates raw and makes sure it ends in a slash so relative
// endpoint paths resolve below it.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server URL %q must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server URL %q has no host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// CheckAnswer asks the server whether sub is right.
func (c *Client) CheckAnswer(ctx context.Context, sub quiz.AnswerSubmission) (quiz.Verdict, error) {
	call := Call{
		Op:     "check_answer",
		Method: http.MethodPost,
		Path:   "quizzer/check_answer/",
		Form: url.Values{
			"quiz_type":   {string(sub.Mode)},
			"question_id": {sub.QuestionID},
			"answer":      {sub.Value},
		},
	}
	if c.legacy {
		call.Query = url.Values{"legacy": {"true"}}
	}
	res, err := c.doer.Do(ctx, call)
	if err != nil {
		return quiz.Verdict{}, err
	}
	return decodeVerdict(res)
}

// AddToLearned records a word as learned.
func (c *Client) AddToLearned(ctx context.Context, req quiz.LearnRequest) (quiz.LearnResult, error) {
	const op = "add_to_learned"
	res, err := c.doer.Do(ctx, Call{
		Op:     op,
		Method: http.MethodPost,
		Path:   "quizzer/add_to_learned/",
		Form: url.Values{
			"question_id":    {req.QuestionID},
			"is_last":        {strconv.FormatBool(req.IsLast)},
			"learning_block": {req.LearningBlock},
		},
	})
	if err != nil {
		return quiz.LearnResult{}, err
	}

	var body struct {
		Created    bool   `json:"created"`
		UserWordID flexID `json:"user_word_id"`
		IsLast     bool   `json:"is_last"`
	}
	if err := validateBody(op, "add-to-learned", res, &body); err != nil {
		return quiz.LearnResult{}, err
	}
	return quiz.LearnResult{
		Created:   body.Created,
		LearnedID: string(body.UserWordID),
		IsLast:    body.IsLast,
	}, nil
}

// ResultsForm encodes a report as the results page form.
func ResultsForm(r quiz.Report) url.Values {
	return url.Values{
		"learning_block": {r.LearningBlock},
		"quiz_words":     {strings.Join(r.QuestionIDs, ",")},
		"quiz_score":     {strconv.Itoa(r.Score)},
		"num_questions":  {strconv.Itoa(r.NumQuestions)},
		"quiz_mode":      {string(r.Mode)},
		"quiz_type":      {string(r.Mode)},
	}
}

// SubmitResults posts the final report. Any 2xx status is success.
func (c *Client) SubmitResults(ctx context.Context, r quiz.Report) error {
	_, err := c.doer.Do(ctx, Call{
		Op:     "submit_results",
		Method: http.MethodPost,
		Path:   "quizzer/results/",
		Form:   ResultsForm(r),
	})
	return err
}

// FetchDeck loads the cards of a new quiz attempt.
func (c *Client) FetchDeck(ctx context.Context, mode quiz.Mode, block string) (Deck, error) {
	const op = "fetch_deck"
	res, err := c.doer.Do(ctx, Call{
		Op:     op,
		Method: http.MethodPost,
		Path:   "quizzer/" + string(mode) + "/",
		Form:   url.Values{"learning_block": {block}},
	})
	if err != nil {
		return Deck{}, err
	}
	var deck Deck
	if err := validateBody(op, "deck", res, &deck); err != nil {
		return Deck{}, err
	}
	if deck.LearningBlock == "" {
		deck.LearningBlock = block
	}
	return deck, nil
}

// EditField changes one column of a word. Edits are independent; the last
// one wins.
func (c *Client) EditField(ctx context.Context, wordID, field, value string) (FieldEdit, error) {
	const op = "edit_word_info"
	res, err := c.doer.Do(ctx, Call{
		Op:     op,
		Method: http.MethodPost,
		Path:   "learn/edit_word_info/",
		Form: url.Values{
			"word_id":       {wordID},
			"changed_field": {field},
			"new_value":     {value},
		},
	})
	if err != nil {
		return FieldEdit{}, err
	}
	var edit FieldEdit
	if err := validateBody(op, "edit-field", res, &edit); err != nil {
		return FieldEdit{}, err
	}
	if !edit.Success {
		return FieldEdit{}, &ValidationError{Op: op, StatusCode: res.StatusCode, Body: res.Body, Err: fmt.Errorf("server refused edit of %s", field)}
	}
	edit.WordID = wordID
	return edit, nil
}

// ResetBlock deletes the learner's progress on a block.
func (c *Client) ResetBlock(ctx context.Context, block string) error {
	const op = "reset_test_block"
	res, err := c.doer.Do(ctx, Call{
		Op:     op,
		Method: http.MethodPost,
		Path:   "learn/reset_test_block/",
		Form:   url.Values{"learning_block": {block}},
	})
	if err != nil {
		return err
	}
	var body struct {
		Success bool `json:"success"`
	}
	if err := validateBody(op, "success", res, &body); err != nil {
		return err
	}
	if !body.Success {
		return &ValidationError{Op: op, StatusCode: res.StatusCode, Body: res.Body, Err: fmt.Errorf("server refused reset of %s", block)}
	}
	return nil
}

// AddBlockWords appends an empty word row to a block for editing.
func (c *Client) AddBlockWords(ctx context.Context, blockID, blockSlug string) error {
	const op = "add_word_info"
	res, err := c.doer.Do(ctx, Call{
		Op:     op,
		Method: http.MethodPost,
		Path:   "learn/add_word_info/",
		Form: url.Values{
			"learning_block_id":   {blockID},
			"learning_block_slug": {blockSlug},
		},
	})
	if err != nil {
		return err
	}
	return validateBody(op, "success", res, nil)
}

// BlockStats fetches the mastery summary of a block.
func (c *Client) BlockStats(ctx context.Context, block string) (BlockStats, error) {
	const op = "block_stats"
	res, err := c.doer.Do(ctx, Call{
		Op:     op,
		Method: http.MethodGet,
		Path:   "learn/" + url.PathEscape(block) + "/stats/",
	})
	if err != nil {
		return BlockStats{}, err
	}
	var stats BlockStats
	if err := validateBody(op, "block-stats", res, &stats); err != nil {
		return BlockStats{}, err
	}
	return stats, nil
}

// Blocks lists the learning blocks.
func (c *Client) Blocks(ctx context.Context) ([]BlockSummary, error) {
	const op = "blocks"
	res, err := c.doer.Do(ctx, Call{
		Op:     op,
		Method: http.MethodGet,
		Path:   "learn/blocks/",
	})
	if err != nil {
		return nil, err
	}
	var blocks []BlockSummary
	if err := validateBody(op, "blocks", res, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// BlockWords lists the words of a block for the editor.
func (c *Client) BlockWords(ctx context.Context, block string) ([]DeckCard, error) {
	const op = "block_words"
	res, err := c.doer.Do(ctx, Call{
		Op:     op,
		Method: http.MethodGet,
		Path:   "learn/" + url.PathEscape(block) + "/words/",
	})
	if err != nil {
		return nil, err
	}
	var deck Deck
	if err := validateBody(op, "deck", res, &deck); err != nil {
		return nil, err
	}
	return deck.Cards, nil
}
