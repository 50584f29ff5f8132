package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	Target    string    // "remote" or "llm"; empty matches both
	Operation string
	Failed    bool // only unsuccessful round trips
}

// RequestEventData captures one outbound round trip, either to the GeoGem
// server or to an LLM provider.
type RequestEventData struct {
	Target       string // "remote" or "llm"
	Operation    string // e.g. "check_answer", "example"
	Method       string
	URL          string
	Purpose      string
	StatusCode   int
	LatencyMs    int64
	Attempts     int
	Success      bool
	ErrorKind    string // "network", "validation", "timeout" or empty
	ErrorMessage string
	InputTokens  int
	OutputTokens int
	RequestBody  string
	ResponseBody string
}

// RequestEvent is a stored RequestEventData.
type RequestEvent struct {
	RequestEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// EventRepo provides append and query access to the request log.
type EventRepo interface {
	// AppendRequest records a round trip.
	AppendRequest(ctx context.Context, data RequestEventData) error

	// QueryRequests lists events newest first.
	QueryRequests(ctx context.Context, opts QueryOpts) ([]RequestEvent, error)

	// GetRequest returns one event by id.
	GetRequest(ctx context.Context, id int) (*RequestEvent, error)
}

// ReportRecord is a finalized quiz kept in the local history.
type ReportRecord struct {
	ID            int
	Sequence      int64
	SessionID     string
	LearningBlock string
	Mode          string
	QuestionIDs   []string
	Score         int
	NumQuestions  int
	Delivered     bool
	FinishedAt    time.Time
}

// ReportRepo stores the history of finished quizzes.
type ReportRepo interface {
	// SaveReport stores a report. A repeated session id updates the row.
	SaveReport(ctx context.Context, r ReportRecord) error

	// ListReports returns the most recent reports first.
	ListReports(ctx context.Context, limit int) ([]ReportRecord, error)

	// ReportsForBlock returns the reports of one block, most recent first.
	ReportsForBlock(ctx context.Context, block string, limit int) ([]ReportRecord, error)
}
