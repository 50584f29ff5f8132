package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/abhisek/geogem/internal/quiz"
)

// CanonicalAPIVersion is the first server API that answers answer checks with
// a plain object.
const CanonicalAPIVersion = "v2"

// normalizeVersion turns "2", "2.1" or "v2" into a semver string. Invalid
// input yields "".
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// LegacyAnswers reports whether a server speaking apiVersion wraps answer
// checks in a JSON string holding a one-element array. Unknown versions are
// treated as current.
func LegacyAnswers(apiVersion string) bool {
	v := normalizeVersion(apiVersion)
	return v != "" && semver.Compare(v, CanonicalAPIVersion) < 0
}

type answerBody struct {
	IsCorrect   bool   `json:"is_correct"`
	ExampleSpan string `json:"example_span"`
}

type legacyAnswerItem struct {
	Success     any    `json:"success"`
	ExampleSpan string `json:"example_span"`
}

// decodeVerdict accepts the plain object and the legacy string-wrapped array.
// The shape is detected from the first byte of the body.
func decodeVerdict(res *Result) (quiz.Verdict, error) {
	const op = "check_answer"
	body := bytes.TrimSpace(res.Body)
	if len(body) == 0 {
		return quiz.Verdict{}, &ValidationError{Op: op, Body: res.Body, Err: fmt.Errorf("empty body")}
	}

	switch body[0] {
	case '{':
		var ab answerBody
		if err := validateBody(op, "check-answer", &Result{Body: body}, &ab); err != nil {
			return quiz.Verdict{}, err
		}
		return quiz.Verdict{Correct: ab.IsCorrect, Example: ab.ExampleSpan}, nil

	case '"':
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return quiz.Verdict{}, &ValidationError{Op: op, Body: res.Body, Err: fmt.Errorf("unwrap legacy body: %w", err)}
		}
		body = bytes.TrimSpace([]byte(inner))
		if len(body) == 0 || body[0] != '[' {
			return quiz.Verdict{}, &ValidationError{Op: op, Body: res.Body, Err: fmt.Errorf("legacy body is not an array")}
		}
		fallthrough

	case '[':
		var items []legacyAnswerItem
		if err := validateBody(op, "check-answer-legacy", &Result{Body: body}, &items); err != nil {
			return quiz.Verdict{}, err
		}
		item := items[0]
		correct := item.Success == "true" || item.Success == true
		return quiz.Verdict{Correct: correct, Example: item.ExampleSpan}, nil
	}

	return quiz.Verdict{}, &ValidationError{Op: op, Body: res.Body, Err: fmt.Errorf("unexpected body %q", truncate(string(body), 64))}
}
