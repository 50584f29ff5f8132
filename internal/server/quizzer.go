package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/geogem/internal/mastery"
	"github.com/abhisek/geogem/internal/quiz"
	"github.com/abhisek/geogem/internal/remote"
	"github.com/abhisek/geogem/internal/store"
)

var errEmptyDeck = errors.New("no words to quiz in this block")

func (s *Server) block(c *gin.Context, slug string) (*store.Block, bool) {
	if slug == "" {
		abortError(c, http.StatusBadRequest, errors.New("learning_block is required"))
		return nil, false
	}
	b, err := s.bank.BlockBySlug(c.Request.Context(), slug)
	if err != nil {
		abortError(c, statusFor(err), err)
		return nil, false
	}
	return b, true
}

func formID(c *gin.Context, field string) (int, bool) {
	id, err := strconv.Atoi(c.PostForm(field))
	if err != nil {
		abortError(c, http.StatusBadRequest, fmt.Errorf("%s must be an integer", field))
		return 0, false
	}
	return id, true
}

// options returns the word's translation and up to WrongOptions other
// translations of the block, shuffled.
func (s *Server) options(word store.Word, blockWords []store.Word) []string {
	var others []string
	for _, w := range blockWords {
		if w.ID != word.ID && w.Translation != "" {
			others = append(others, w.Translation)
		}
	}
	wrong := shuffle(s, others, min(WrongOptions, len(others)))
	return shuffle(s, append([]string{word.Translation}, wrong...), len(wrong)+1)
}

func (s *Server) multipleChoiceDeck(c *gin.Context) {
	b, ok := s.block(c, c.PostForm("learning_block"))
	if !ok {
		return
	}
	words, err := s.bank.BlockWords(c.Request.Context(), b.ID)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}
	picked := shuffle(s, words, min(MaxDeckSize, len(words)))
	if len(picked) == 0 {
		abortError(c, http.StatusNotFound, errEmptyDeck)
		return
	}

	deck := remote.Deck{LearningBlock: b.Slug, Mode: string(quiz.ModeMultipleChoice)}
	for _, w := range picked {
		deck.Cards = append(deck.Cards, remote.DeckCard{
			ID:              strconv.Itoa(w.ID),
			Prompt:          w.Name,
			Transliteration: w.Transliteration,
			Options:         s.options(w, words),
		})
	}
	c.JSON(http.StatusOK, deck)
}

func (s *Server) learnDeck(c *gin.Context) {
	b, ok := s.block(c, c.PostForm("learning_block"))
	if !ok {
		return
	}
	ctx := c.Request.Context()
	words, err := s.bank.BlockWords(ctx, b.ID)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}
	learned, err := s.bank.LearnerWords(ctx, b.ID)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}
	known := make(map[int]bool, len(learned))
	for _, lw := range learned {
		known[lw.WordID] = true
	}
	var unlearned []store.Word
	for _, w := range words {
		if !known[w.ID] {
			unlearned = append(unlearned, w)
		}
	}

	n := LearnDeckSize
	if raw := c.PostForm("num_questions"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			n = v
		}
	}
	n = min(MaxLearnDeckSize, max(1, n))

	picked := shuffle(s, unlearned, n)
	if len(picked) == 0 {
		abortError(c, http.StatusNotFound, errEmptyDeck)
		return
	}

	deck := remote.Deck{LearningBlock: b.Slug, Mode: string(quiz.ModeLearn)}
	for _, w := range picked {
		deck.Cards = append(deck.Cards, remote.DeckCard{
			ID:              strconv.Itoa(w.ID),
			Prompt:          w.Name,
			Transliteration: w.Transliteration,
			Translation:     w.Translation,
			Example:         w.Example,
		})
	}
	c.JSON(http.StatusOK, deck)
}

func (s *Server) reviewDeck(c *gin.Context) {
	b, ok := s.block(c, c.PostForm("learning_block"))
	if !ok {
		return
	}
	ctx := c.Request.Context()
	learned, err := s.bank.LearnerWords(ctx, b.ID)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}
	words, err := s.bank.BlockWords(ctx, b.ID)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}
	picked := shuffle(s, learned, min(MaxDeckSize, len(learned)))
	if len(picked) == 0 {
		abortError(c, http.StatusNotFound, errEmptyDeck)
		return
	}

	deck := remote.Deck{LearningBlock: b.Slug, Mode: string(quiz.ModeReview)}
	for _, lw := range picked {
		deck.Cards = append(deck.Cards, remote.DeckCard{
			ID:              strconv.Itoa(lw.ID),
			Prompt:          lw.Word.Name,
			Transliteration: lw.Word.Transliteration,
			Options:         s.options(lw.Word, words),
		})
	}
	c.JSON(http.StatusOK, deck)
}

// checkAnswer scores one answer. Multiple choice questions are word ids and
// review questions are learner word ids.
func (s *Server) checkAnswer(c *gin.Context) {
	mode := c.PostForm("quiz_type")
	rule, ok := mastery.Rules[mode]
	if !ok {
		abortError(c, http.StatusBadRequest, fmt.Errorf("unknown quiz_type %q", mode))
		return
	}
	id, ok := formID(c, "question_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// points and experience move together or not at all
	var (
		correct bool
		example string
	)
	err := s.bank.InTx(ctx, func(bank *store.WordBank) error {
		var lw store.LearnerWord
		switch quiz.Mode(mode) {
		case quiz.ModeMultipleChoice:
			if _, err := bank.WordByID(ctx, id); err != nil {
				return err
			}
			got, _, err := bank.GetOrCreateLearnerWord(ctx, id)
			if err != nil {
				return err
			}
			lw = got
		case quiz.ModeReview:
			got, err := bank.LearnerWordByID(ctx, id)
			if err != nil {
				return err
			}
			lw = *got
		}

		correct = c.PostForm("answer") == lw.Word.Translation
		lw.Points = rule.Apply(lw.Points, correct)
		if err := bank.SaveLearnerWord(ctx, &lw); err != nil {
			return err
		}
		if !correct {
			return nil
		}
		example = lw.Word.Example
		return bank.AddExperience(ctx, rule.Experience)
	})
	if err != nil {
		abortError(c, statusFor(err), err)
		return
	}

	if c.Query("legacy") == "true" {
		success := "false"
		if correct {
			success = "true"
		}
		wrapped, err := json.Marshal([]gin.H{{"success": success, "example_span": example}})
		if err != nil {
			abortError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, string(wrapped))
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_correct": correct, "example_span": example})
}

func (s *Server) addToLearned(c *gin.Context) {
	id, ok := formID(c, "question_id")
	if !ok {
		return
	}
	isLast := c.PostForm("is_last") == "true"
	ctx := c.Request.Context()

	var (
		lw      store.LearnerWord
		created bool
	)
	err := s.bank.InTx(ctx, func(bank *store.WordBank) error {
		if _, err := bank.WordByID(ctx, id); err != nil {
			return err
		}
		var err error
		lw, created, err = bank.GetOrCreateLearnerWord(ctx, id)
		if err != nil || !created {
			return err
		}
		lw.Points++
		if err := bank.SaveLearnerWord(ctx, &lw); err != nil {
			return err
		}
		if err := bank.IncrementLearned(ctx); err != nil {
			return err
		}
		return bank.AddExperience(ctx, 1)
	})
	if err != nil {
		abortError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created, "user_word_id": lw.ID, "is_last": isLast})
}

// results acknowledges a finished quiz.
func (s *Server) results(c *gin.Context) {
	b, ok := s.block(c, c.PostForm("learning_block"))
	if !ok {
		return
	}
	mode := c.PostForm("quiz_type")
	if mode == "" {
		mode = c.PostForm("quiz_mode")
	}
	if _, err := quiz.ParseMode(mode); err != nil {
		abortError(c, http.StatusBadRequest, err)
		return
	}

	var ids []int
	if raw := c.PostForm("quiz_words"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.Atoi(part)
			if err != nil {
				abortError(c, http.StatusBadRequest, fmt.Errorf("quiz_words: %q is not an id", part))
				return
			}
			ids = append(ids, id)
		}
	}
	score, _ := strconv.Atoi(c.PostForm("quiz_score"))
	numQuestions, _ := strconv.Atoi(c.PostForm("num_questions"))

	ctx := c.Request.Context()
	words, err := s.bank.BlockWords(ctx, b.ID)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}
	learned, err := s.bank.LearnerWords(ctx, b.ID)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"learning_block": b.Slug,
		"quiz_type":      mode,
		"quiz_words":     ids,
		"quiz_score":     score,
		"num_questions":  numQuestions,
		"is_completed":   mastery.FullyLearned(len(learned), len(words)),
	})
}
