package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type reportRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var reportColumns = []string{
	"id", "sequence", "session_id", "learning_block", "mode", "question_ids",
	"score", "num_questions", "delivered", "finished_at",
}

func (r *reportRepo) SaveReport(ctx context.Context, rec ReportRecord) error {
	if rec.SessionID == "" {
		return fmt.Errorf("save report: empty session id")
	}
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	finished := rec.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	query, args := builder().Insert(QuizReportsTable.Name).
		Columns(reportColumns[1:]...).
		Values(
			seqNum, rec.SessionID, rec.LearningBlock, rec.Mode,
			strings.Join(rec.QuestionIDs, ","), rec.Score, rec.NumQuestions,
			rec.Delivered, finished.UTC(),
		).
		OnConflict(
			entsql.ConflictColumns("session_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func (r *reportRepo) ListReports(ctx context.Context, limit int) ([]ReportRecord, error) {
	return r.list(ctx, nil, limit)
}

func (r *reportRepo) ReportsForBlock(ctx context.Context, block string, limit int) ([]ReportRecord, error) {
	return r.list(ctx, entsql.EQ("learning_block", block), limit)
}

func (r *reportRepo) list(ctx context.Context, pred *entsql.Predicate, limit int) ([]ReportRecord, error) {
	sel := builder().Select(reportColumns...).
		From(entsql.Table(QuizReportsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	if pred != nil {
		sel.Where(pred)
	}
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []ReportRecord
	for rows.Next() {
		var (
			rec ReportRecord
			ids string
		)
		if err := rows.Scan(
			&rec.ID, &rec.Sequence, &rec.SessionID, &rec.LearningBlock, &rec.Mode, &ids,
			&rec.Score, &rec.NumQuestions, &rec.Delivered, &rec.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if ids != "" {
			rec.QuestionIDs = strings.Split(ids, ",")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
