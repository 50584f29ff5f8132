package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/geogem/internal/mastery"
)

// Block is a named group of vocabulary words.
type Block struct {
	ID          int
	Slug        string
	Name        string
	Description string
}

// Word is one vocabulary entry.
type Word struct {
	ID              int
	Name            string
	Transliteration string
	Translation     string
	Example         string
	UpdatedAt       time.Time
}

// LearnerWord tracks the learner's progress on one word.
type LearnerWord struct {
	ID           int
	WordID       int
	Points       int
	MasteryLevel int
	Word         Word
}

// Profile holds the learner's counters.
type Profile struct {
	NumLearnedWords int
	Experience      int
}

// Level is the profile level derived from experience.
func (p Profile) Level() int {
	return mastery.ProfileLevel(p.Experience)
}

// FieldEdit is one change applied by UpdateWordField.
type FieldEdit struct {
	WordID   int
	Field    string
	OldValue string
	NewValue string
	EditedAt time.Time
}

// EditableFields are the word columns UpdateWordField accepts.
var EditableFields = []string{"name", "transliteration", "translation", "example"}

// ErrFieldNotEditable is returned for columns outside EditableFields.
var ErrFieldNotEditable = errors.New("field is not editable")

// WordBank is the vocabulary store behind the offline server.
type WordBank struct {
	db *sql.DB
	tx *sql.Tx
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (w *WordBank) conn() querier {
	if w.tx != nil {
		return w.tx
	}
	return w.db
}

// InTx runs fn on a WordBank bound to one transaction and commits when fn
// succeeds. Nested calls join the outer transaction.
func (w *WordBank) InTx(ctx context.Context, fn func(tx *WordBank) error) error {
	if w.tx != nil {
		return fn(w)
	}
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&WordBank{db: w.db, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// begin opens a transaction unless w already runs inside one.
func (w *WordBank) begin(ctx context.Context) (querier, func() error, func() error, error) {
	if w.tx != nil {
		noop := func() error { return nil }
		return w.tx, noop, noop, nil
	}
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return tx, tx.Commit, tx.Rollback, nil
}

var (
	wordColumns = []string{"id", "name", "transliteration", "translation", "example", "updated_at"}
	profileID   = 1
)

// Slugify lowercases name and joins its alphanumeric runs with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// CreateBlock inserts a block. An empty slug is derived from the name.
func (w *WordBank) CreateBlock(ctx context.Context, b Block) (Block, error) {
	if b.Slug == "" {
		b.Slug = Slugify(b.Name)
	}
	if b.Slug == "" {
		return Block{}, fmt.Errorf("create block: empty name")
	}
	now := time.Now().UTC()
	query, args := builder().Insert(BlocksTable.Name).
		Columns("slug", "name", "description", "added_at", "updated_at").
		Values(b.Slug, b.Name, b.Description, now, now).
		Query()
	res, err := w.conn().ExecContext(ctx, query, args...)
	if err != nil {
		return Block{}, fmt.Errorf("create block %s: %w", b.Slug, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Block{}, fmt.Errorf("create block %s: %w", b.Slug, err)
	}
	b.ID = int(id)
	return b, nil
}

// Blocks lists every block by name.
func (w *WordBank) Blocks(ctx context.Context) ([]Block, error) {
	query, args := builder().Select("id", "slug", "name", "description").
		From(entsql.Table(BlocksTable.Name)).
		OrderBy("name").
		Query()
	rows, err := w.conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	var out []Block
	for rows.Next() {
		var b Block
		if err := rows.Scan(&b.ID, &b.Slug, &b.Name, &b.Description); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BlockBySlug looks a block up by slug.
func (w *WordBank) BlockBySlug(ctx context.Context, slug string) (*Block, error) {
	query, args := builder().Select("id", "slug", "name", "description").
		From(entsql.Table(BlocksTable.Name)).
		Where(entsql.EQ("slug", slug)).
		Query()
	var b Block
	err := w.conn().QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.Slug, &b.Name, &b.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("block %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query block %q: %w", slug, err)
	}
	return &b, nil
}

// AddWord inserts a word and attaches it to the block.
func (w *WordBank) AddWord(ctx context.Context, blockID int, word Word) (Word, error) {
	tx, commit, rollback, err := w.begin(ctx)
	if err != nil {
		return Word{}, fmt.Errorf("begin: %w", err)
	}
	defer rollback()

	now := time.Now().UTC()
	query, args := builder().Insert(WordsTable.Name).
		Columns("name", "transliteration", "translation", "example", "added_at", "updated_at").
		Values(word.Name, word.Transliteration, word.Translation, word.Example, now, now).
		Query()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return Word{}, fmt.Errorf("insert word: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Word{}, fmt.Errorf("insert word: %w", err)
	}

	query, args = builder().Insert(BlockWordsTable.Name).
		Columns("block_id", "word_id").
		Values(blockID, id).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return Word{}, fmt.Errorf("attach word to block %d: %w", blockID, err)
	}
	if err := commit(); err != nil {
		return Word{}, fmt.Errorf("commit: %w", err)
	}

	word.ID = int(id)
	word.UpdatedAt = now
	return word, nil
}

// BlockWords returns the words of a block in insertion order.
func (w *WordBank) BlockWords(ctx context.Context, blockID int) ([]Word, error) {
	words := entsql.Table(WordsTable.Name)
	members := entsql.Table(BlockWordsTable.Name)

	cols := make([]string, len(wordColumns))
	for i, c := range wordColumns {
		cols[i] = words.C(c)
	}
	query, args := builder().Select(cols...).
		From(words).
		Join(members).On(words.C("id"), members.C("word_id")).
		Where(entsql.EQ(members.C("block_id"), blockID)).
		OrderBy(words.C("id")).
		Query()

	rows, err := w.conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query block words: %w", err)
	}
	defer rows.Close()

	var out []Word
	for rows.Next() {
		var wd Word
		if err := rows.Scan(&wd.ID, &wd.Name, &wd.Transliteration, &wd.Translation, &wd.Example, &wd.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		out = append(out, wd)
	}
	return out, rows.Err()
}

// WordByID returns one word.
func (w *WordBank) WordByID(ctx context.Context, id int) (*Word, error) {
	query, args := builder().Select(wordColumns...).
		From(entsql.Table(WordsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	var wd Word
	err := w.conn().QueryRowContext(ctx, query, args...).
		Scan(&wd.ID, &wd.Name, &wd.Transliteration, &wd.Translation, &wd.Example, &wd.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("word %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query word %d: %w", id, err)
	}
	return &wd, nil
}

func learnerWordSelector() *entsql.Selector {
	lw := entsql.Table(LearnerWordsTable.Name)
	words := entsql.Table(WordsTable.Name)
	cols := []string{lw.C("id"), lw.C("word_id"), lw.C("points"), lw.C("mastery_level")}
	for _, c := range wordColumns {
		cols = append(cols, words.C(c))
	}
	return builder().Select(cols...).
		From(lw).
		Join(words).On(lw.C("word_id"), words.C("id"))
}

func scanLearnerWord(s scanner) (LearnerWord, error) {
	var lw LearnerWord
	err := s.Scan(
		&lw.ID, &lw.WordID, &lw.Points, &lw.MasteryLevel,
		&lw.Word.ID, &lw.Word.Name, &lw.Word.Transliteration, &lw.Word.Translation,
		&lw.Word.Example, &lw.Word.UpdatedAt,
	)
	return lw, err
}

// LearnerWords returns the learner words belonging to a block.
func (w *WordBank) LearnerWords(ctx context.Context, blockID int) ([]LearnerWord, error) {
	members := entsql.Table(BlockWordsTable.Name)
	sel := learnerWordSelector()
	sel.Join(members).On(sel.C("word_id"), members.C("word_id")).
		Where(entsql.EQ(members.C("block_id"), blockID)).
		OrderBy(sel.C("id"))

	query, args := sel.Query()
	rows, err := w.conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query learner words: %w", err)
	}
	defer rows.Close()

	var out []LearnerWord
	for rows.Next() {
		lw, err := scanLearnerWord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan learner word: %w", err)
		}
		out = append(out, lw)
	}
	return out, rows.Err()
}

// LearnerWordByID returns one learner word with its word.
func (w *WordBank) LearnerWordByID(ctx context.Context, id int) (*LearnerWord, error) {
	sel := learnerWordSelector()
	sel.Where(entsql.EQ(sel.C("id"), id))
	query, args := sel.Query()

	lw, err := scanLearnerWord(w.conn().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("learner word %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query learner word %d: %w", id, err)
	}
	return &lw, nil
}

func (w *WordBank) learnerWordByWord(ctx context.Context, wordID int) (*LearnerWord, error) {
	sel := learnerWordSelector()
	sel.Where(entsql.EQ(sel.C("word_id"), wordID))
	query, args := sel.Query()

	lw, err := scanLearnerWord(w.conn().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query learner word for word %d: %w", wordID, err)
	}
	return &lw, nil
}

// GetOrCreateLearnerWord returns the learner word for wordID, creating it
// with zero points when missing.
func (w *WordBank) GetOrCreateLearnerWord(ctx context.Context, wordID int) (LearnerWord, bool, error) {
	lw, err := w.learnerWordByWord(ctx, wordID)
	if err == nil {
		return *lw, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return LearnerWord{}, false, err
	}

	now := time.Now().UTC()
	query, args := builder().Insert(LearnerWordsTable.Name).
		Columns("word_id", "points", "mastery_level", "added_at", "updated_at").
		Values(wordID, 0, 0, now, now).
		Query()
	if _, err := w.conn().ExecContext(ctx, query, args...); err != nil {
		return LearnerWord{}, false, fmt.Errorf("create learner word for word %d: %w", wordID, err)
	}

	lw, err = w.learnerWordByWord(ctx, wordID)
	if err != nil {
		return LearnerWord{}, false, err
	}
	return *lw, true, nil
}

// SaveLearnerWord stores the points of lw and recomputes its mastery level.
func (w *WordBank) SaveLearnerWord(ctx context.Context, lw *LearnerWord) error {
	lw.MasteryLevel = mastery.LevelFor(lw.Points)
	query, args := builder().Update(LearnerWordsTable.Name).
		Set("points", lw.Points).
		Set("mastery_level", lw.MasteryLevel).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", lw.ID)).
		Query()
	if _, err := w.conn().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save learner word %d: %w", lw.ID, err)
	}
	return nil
}

// UpdateWordField sets one editable column and logs the change.
func (w *WordBank) UpdateWordField(ctx context.Context, wordID int, field, value string) (FieldEdit, error) {
	editable := false
	for _, f := range EditableFields {
		if f == field {
			editable = true
			break
		}
	}
	if !editable {
		return FieldEdit{}, fmt.Errorf("%w: %q", ErrFieldNotEditable, field)
	}

	tx, commit, rollback, err := w.begin(ctx)
	if err != nil {
		return FieldEdit{}, fmt.Errorf("begin: %w", err)
	}
	defer rollback()

	query, args := builder().Select(field).
		From(entsql.Table(WordsTable.Name)).
		Where(entsql.EQ("id", wordID)).
		Query()
	var old string
	err = tx.QueryRowContext(ctx, query, args...).Scan(&old)
	if errors.Is(err, sql.ErrNoRows) {
		return FieldEdit{}, fmt.Errorf("word %d: %w", wordID, ErrNotFound)
	}
	if err != nil {
		return FieldEdit{}, fmt.Errorf("read %s of word %d: %w", field, wordID, err)
	}

	now := time.Now().UTC()
	query, args = builder().Update(WordsTable.Name).
		Set(field, value).
		Set("updated_at", now).
		Where(entsql.EQ("id", wordID)).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return FieldEdit{}, fmt.Errorf("update %s of word %d: %w", field, wordID, err)
	}

	query, args = builder().Insert(WordEditsTable.Name).
		Columns("word_id", "field", "old_value", "new_value", "edited_at").
		Values(wordID, field, old, value, now).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return FieldEdit{}, fmt.Errorf("log edit of word %d: %w", wordID, err)
	}
	if err := commit(); err != nil {
		return FieldEdit{}, fmt.Errorf("commit: %w", err)
	}

	return FieldEdit{WordID: wordID, Field: field, OldValue: old, NewValue: value, EditedAt: now}, nil
}

// FieldEdits returns the edit log of a word, oldest first.
func (w *WordBank) FieldEdits(ctx context.Context, wordID int) ([]FieldEdit, error) {
	query, args := builder().Select("word_id", "field", "old_value", "new_value", "edited_at").
		From(entsql.Table(WordEditsTable.Name)).
		Where(entsql.EQ("word_id", wordID)).
		OrderBy("id").
		Query()
	rows, err := w.conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query edits: %w", err)
	}
	defer rows.Close()

	var out []FieldEdit
	for rows.Next() {
		var e FieldEdit
		if err := rows.Scan(&e.WordID, &e.Field, &e.OldValue, &e.NewValue, &e.EditedAt); err != nil {
			return nil, fmt.Errorf("scan edit: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ResetBlock deletes the learner's words of a block and returns how many
// were removed.
func (w *WordBank) ResetBlock(ctx context.Context, blockID int) (int64, error) {
	members := builder().Select("word_id").
		From(entsql.Table(BlockWordsTable.Name)).
		Where(entsql.EQ("block_id", blockID))
	query, args := builder().Delete(LearnerWordsTable.Name).
		Where(entsql.In("word_id", members)).
		Query()
	res, err := w.conn().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset block %d: %w", blockID, err)
	}
	return res.RowsAffected()
}

func (w *WordBank) ensureProfile(ctx context.Context) error {
	query, args := builder().Insert(ProfilesTable.Name).
		Columns("id", "num_learned_words", "experience").
		Values(profileID, 0, 0).
		OnConflict(entsql.DoNothing()).
		Query()
	if _, err := w.conn().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}
	return nil
}

func (w *WordBank) bumpProfile(ctx context.Context, column string, n int) error {
	if err := w.ensureProfile(ctx); err != nil {
		return err
	}
	query, args := builder().Update(ProfilesTable.Name).
		Add(column, n).
		Where(entsql.EQ("id", profileID)).
		Query()
	if _, err := w.conn().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update profile %s: %w", column, err)
	}
	return nil
}

// AddExperience adds n experience points to the profile.
func (w *WordBank) AddExperience(ctx context.Context, n int) error {
	return w.bumpProfile(ctx, "experience", n)
}

// IncrementLearned bumps the learned words counter.
func (w *WordBank) IncrementLearned(ctx context.Context) error {
	return w.bumpProfile(ctx, "num_learned_words", 1)
}

// Profile returns the learner's counters.
func (w *WordBank) Profile(ctx context.Context) (Profile, error) {
	if err := w.ensureProfile(ctx); err != nil {
		return Profile{}, err
	}
	query, args := builder().Select("num_learned_words", "experience").
		From(entsql.Table(ProfilesTable.Name)).
		Where(entsql.EQ("id", profileID)).
		Query()
	var p Profile
	if err := w.conn().QueryRowContext(ctx, query, args...).Scan(&p.NumLearnedWords, &p.Experience); err != nil {
		return Profile{}, fmt.Errorf("query profile: %w", err)
	}
	return p, nil
}
