package remote

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/geogem/internal/store"
)

// maxLoggedBody caps the response text kept in the request log.
const maxLoggedBody = 4096

// LoggingDoer is a decorator that records every round trip as a request
// event.
type LoggingDoer struct {
	inner     Doer
	eventRepo store.EventRepo
}

// WithLogging wraps a Doer with event logging.
func WithLogging(d Doer, repo store.EventRepo) Doer {
	return &LoggingDoer{inner: d, eventRepo: repo}
}

func (l *LoggingDoer) Do(ctx context.Context, call Call) (*Result, error) {
	start := time.Now()
	res, err := l.inner.Do(ctx, call)

	data := store.RequestEventData{
		Target:      "remote",
		Operation:   call.Op,
		Method:      call.Method,
		URL:         call.Path,
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Attempts:    attemptFrom(ctx),
		Success:     err == nil,
		ErrorKind:   Kind(err),
		RequestBody: call.Form.Encode(),
	}
	if data.Method == "" {
		data.Method = "POST"
	}
	if res != nil {
		data.URL = res.URL
		data.StatusCode = res.StatusCode
		data.ResponseBody = truncate(string(res.Body), maxLoggedBody)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// Timed-out calls are logged too.
	logCtx := context.WithoutCancel(ctx)
	if logErr := l.eventRepo.AppendRequest(logCtx, data); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log request event: %v\n", logErr)
	}

	return res, err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
