package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range Tables {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table.Name,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table.Name, err)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(s.DB())
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var prev int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if seq <= prev {
			t.Errorf("seq[%d] = %d, not greater than %d", i, seq, prev)
		}
		prev = seq
	}
}

func TestRequestEvents_AppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendRequest(ctx, RequestEventData{
		Target: "remote", Operation: "check_answer", Method: "POST",
		URL: "http://x/quizzer/check_answer/", StatusCode: 200, LatencyMs: 12,
		Success: true, RequestBody: "question_id=1&answer=a", ResponseBody: `{"is_correct":true}`,
	}))
	require.NoError(t, repo.AppendRequest(ctx, RequestEventData{
		Target: "remote", Operation: "submit_results", Method: "POST",
		StatusCode: 503, Success: false, ErrorKind: "network", ErrorMessage: "503", Attempts: 3,
	}))
	require.NoError(t, repo.AppendRequest(ctx, RequestEventData{
		Target: "llm", Operation: "example", Purpose: "example", Success: true,
		InputTokens: 10, OutputTokens: 20,
	}))

	all, err := repo.QueryRequests(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "llm", all[0].Target, "newest first")
	assert.Greater(t, all[0].Sequence, all[1].Sequence)

	failed, err := repo.QueryRequests(ctx, QueryOpts{Failed: true})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "network", failed[0].ErrorKind)
	assert.Equal(t, 3, failed[0].Attempts)

	remote, err := repo.QueryRequests(ctx, QueryOpts{Target: "remote", Limit: 1})
	require.NoError(t, err)
	require.Len(t, remote, 1)
	assert.Equal(t, "submit_results", remote[0].Operation)

	got, err := repo.GetRequest(ctx, all[2].ID)
	require.NoError(t, err)
	assert.Equal(t, `{"is_correct":true}`, got.ResponseBody)
	assert.Equal(t, 1, got.Attempts)
	assert.True(t, got.Success)
	assert.WithinDuration(t, time.Now(), got.Timestamp, time.Minute)

	_, err = repo.GetRequest(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReports_SaveAndList(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReportRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, block := range []string{"greetings", "numbers", "greetings"} {
		require.NoError(t, repo.SaveReport(ctx, ReportRecord{
			SessionID:     "s" + string(rune('a'+i)),
			LearningBlock: block,
			Mode:          "review",
			QuestionIDs:   []string{"1", "2", "3", "4"},
			Score:         i + 1,
			NumQuestions:  4,
			FinishedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := repo.ListReports(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "sc", all[0].SessionID)
	assert.Equal(t, []string{"1", "2", "3", "4"}, all[0].QuestionIDs)

	greetings, err := repo.ReportsForBlock(ctx, "greetings", 10)
	require.NoError(t, err)
	assert.Len(t, greetings, 2)

	// same session id updates in place
	require.NoError(t, repo.SaveReport(ctx, ReportRecord{
		SessionID: "sa", LearningBlock: "greetings", Mode: "review",
		Score: 4, NumQuestions: 4, Delivered: true,
	}))
	all, err = repo.ListReports(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "sa", all[0].SessionID)
	assert.True(t, all[0].Delivered)
	assert.Empty(t, all[0].QuestionIDs)
}

func TestReports_EmptySessionID(t *testing.T) {
	s := openTestStore(t)
	err := s.ReportRepo().SaveReport(context.Background(), ReportRecord{})
	assert.Error(t, err)
}

func seedBlock(t *testing.T, wb *WordBank) (Block, []Word) {
	t.Helper()
	ctx := context.Background()
	b, err := wb.CreateBlock(ctx, Block{Name: "Greetings Basics"})
	require.NoError(t, err)

	var words []Word
	for _, w := range []Word{
		{Name: "გამარჯობა", Transliteration: "gamarjoba", Translation: "hello", Example: "გამარჯობა, მეგობარო!"},
		{Name: "ნახვამდის", Transliteration: "nakhvamdis", Translation: "goodbye"},
		{Name: "მადლობა", Transliteration: "madloba", Translation: "thank you"},
	} {
		added, err := wb.AddWord(ctx, b.ID, w)
		require.NoError(t, err)
		words = append(words, added)
	}
	return b, words
}

func TestWordBank_BlocksAndWords(t *testing.T) {
	s := openTestStore(t)
	wb := s.WordBank()
	ctx := context.Background()

	b, words := seedBlock(t, wb)
	assert.Equal(t, "greetings-basics", b.Slug)

	got, err := wb.BlockBySlug(ctx, "greetings-basics")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = wb.BlockBySlug(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	blockWords, err := wb.BlockWords(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, blockWords, 3)
	assert.Equal(t, "hello", blockWords[0].Translation)

	w, err := wb.WordByID(ctx, words[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "nakhvamdis", w.Transliteration)

	blocks, err := wb.Blocks(ctx)
	require.NoError(t, err)
	assert.Len(t, blocks, 1)
}

func TestWordBank_LearnerWords(t *testing.T) {
	s := openTestStore(t)
	wb := s.WordBank()
	ctx := context.Background()
	b, words := seedBlock(t, wb)

	lw, created, err := wb.GetOrCreateLearnerWord(ctx, words[0].ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "hello", lw.Word.Translation)

	again, created, err := wb.GetOrCreateLearnerWord(ctx, words[0].ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, lw.ID, again.ID)

	lw.Points = 16
	require.NoError(t, wb.SaveLearnerWord(ctx, &lw))
	assert.Equal(t, 3, lw.MasteryLevel)

	stored, err := wb.LearnerWordByID(ctx, lw.ID)
	require.NoError(t, err)
	assert.Equal(t, 16, stored.Points)
	assert.Equal(t, 3, stored.MasteryLevel)

	list, err := wb.LearnerWords(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	n, err := wb.ResetBlock(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	list, err = wb.LearnerWords(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWordBank_InTx(t *testing.T) {
	s := openTestStore(t)
	wb := s.WordBank()
	ctx := context.Background()
	b, words := seedBlock(t, wb)

	failed := errors.New("counter update failed")
	err := wb.InTx(ctx, func(tx *WordBank) error {
		if _, _, err := tx.GetOrCreateLearnerWord(ctx, words[0].ID); err != nil {
			return err
		}
		if err := tx.IncrementLearned(ctx); err != nil {
			return err
		}
		return failed
	})
	require.ErrorIs(t, err, failed)

	list, err := wb.LearnerWords(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	p, err := wb.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, p.NumLearnedWords)

	err = wb.InTx(ctx, func(tx *WordBank) error {
		if _, err := tx.UpdateWordField(ctx, words[0].ID, "example", "inside"); err != nil {
			return err
		}
		return tx.IncrementLearned(ctx)
	})
	require.NoError(t, err)
	w, err := wb.WordByID(ctx, words[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "inside", w.Example)
	p, err = wb.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p.NumLearnedWords)
}

func TestWordBank_UpdateWordField(t *testing.T) {
	s := openTestStore(t)
	wb := s.WordBank()
	ctx := context.Background()
	_, words := seedBlock(t, wb)

	edit, err := wb.UpdateWordField(ctx, words[1].ID, "translation", "bye")
	require.NoError(t, err)
	assert.Equal(t, "goodbye", edit.OldValue)
	assert.Equal(t, "bye", edit.NewValue)

	// last write wins
	_, err = wb.UpdateWordField(ctx, words[1].ID, "translation", "see you")
	require.NoError(t, err)
	w, err := wb.WordByID(ctx, words[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "see you", w.Translation)

	log, err := wb.FieldEdits(ctx, words[1].ID)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, "bye", log[1].OldValue)

	_, err = wb.UpdateWordField(ctx, words[1].ID, "id", "5")
	assert.ErrorIs(t, err, ErrFieldNotEditable)

	_, err = wb.UpdateWordField(ctx, 4242, "name", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWordBank_Profile(t *testing.T) {
	s := openTestStore(t)
	wb := s.WordBank()
	ctx := context.Background()

	p, err := wb.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, Profile{}, p)

	require.NoError(t, wb.AddExperience(ctx, 20))
	require.NoError(t, wb.IncrementLearned(ctx))
	require.NoError(t, wb.IncrementLearned(ctx))

	p, err = wb.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, p.Experience)
	assert.Equal(t, 2, p.NumLearnedWords)
	assert.Equal(t, 2, p.Level())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "greetings-basics", Slugify("Greetings  Basics!"))
	assert.Equal(t, "a1-b2", Slugify("--A1 / b2--"))
	assert.Equal(t, "", Slugify("  "))
}
