package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo with the ent SQL builder and the shared
// sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var requestEventColumns = []string{
	"id", "sequence", "timestamp", "target", "operation", "method", "url",
	"purpose", "status_code", "latency_ms", "attempts", "success",
	"error_kind", "error_message", "input_tokens", "output_tokens",
	"request_body", "response_body",
}

func (r *eventRepo) AppendRequest(ctx context.Context, data RequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	attempts := data.Attempts
	if attempts < 1 {
		attempts = 1
	}

	query, args := builder().Insert(RequestEventsTable.Name).
		Columns(requestEventColumns[1:]...).
		Values(
			seqNum, time.Now().UTC(), data.Target, data.Operation, data.Method, data.URL,
			data.Purpose, data.StatusCode, data.LatencyMs, attempts, data.Success,
			data.ErrorKind, data.ErrorMessage, data.InputTokens, data.OutputTokens,
			data.RequestBody, data.ResponseBody,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryRequests(ctx context.Context, opts QueryOpts) ([]RequestEvent, error) {
	sel := builder().Select(requestEventColumns...).
		From(entsql.Table(RequestEventsTable.Name))

	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.Target != "" {
		preds = append(preds, entsql.EQ("target", opts.Target))
	}
	if opts.Operation != "" {
		preds = append(preds, entsql.EQ("operation", opts.Operation))
	}
	if opts.Failed {
		preds = append(preds, entsql.EQ("success", false))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query request events: %w", err)
	}
	defer rows.Close()

	var events []RequestEvent
	for rows.Next() {
		e, err := scanRequestEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetRequest(ctx context.Context, id int) (*RequestEvent, error) {
	query, args := builder().Select(requestEventColumns...).
		From(entsql.Table(RequestEventsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	e, err := scanRequestEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("request event %d: %w", id, ErrNotFound)
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequestEvent(s scanner) (*RequestEvent, error) {
	var e RequestEvent
	err := s.Scan(
		&e.ID, &e.Sequence, &e.Timestamp, &e.Target, &e.Operation, &e.Method, &e.URL,
		&e.Purpose, &e.StatusCode, &e.LatencyMs, &e.Attempts, &e.Success,
		&e.ErrorKind, &e.ErrorMessage, &e.InputTokens, &e.OutputTokens,
		&e.RequestBody, &e.ResponseBody,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan request event: %w", err)
	}
	return &e, nil
}
