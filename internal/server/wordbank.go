package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/geogem/internal/mastery"
	"github.com/abhisek/geogem/internal/remote"
	"github.com/abhisek/geogem/internal/store"
)

func (s *Server) listBlocks(c *gin.Context) {
	ctx := c.Request.Context()
	blocks, err := s.bank.Blocks(ctx)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}
	out := make([]remote.BlockSummary, 0, len(blocks))
	for _, b := range blocks {
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
		out = append(out, remote.BlockSummary{
			Slug:        b.Slug,
			Name:        b.Name,
			Description: b.Description,
			NumWords:    len(words),
			NumLearned:  len(learned),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) blockStats(c *gin.Context) {
	b, ok := s.block(c, c.Param("slug"))
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
	profile, err := s.bank.Profile(ctx)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}

	levels := make([]int, len(learned))
	for i, lw := range learned {
		levels[i] = lw.MasteryLevel
	}
	c.JSON(http.StatusOK, remote.BlockStats{
		LearningBlock: b.Slug,
		NumWords:      len(words),
		NumLearned:    len(learned),
		MasteryLevel:  mastery.BlockLevel(levels, len(words)),
		Levels:        levels,
		Experience:    profile.Experience,
		ProfileLevel:  profile.Level(),
	})
}

func (s *Server) blockWords(c *gin.Context) {
	b, ok := s.block(c, c.Param("slug"))
	if !ok {
		return
	}
	words, err := s.bank.BlockWords(c.Request.Context(), b.ID)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}
	deck := remote.Deck{LearningBlock: b.Slug, Cards: []remote.DeckCard{}}
	for _, w := range words {
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

func (s *Server) editWordInfo(c *gin.Context) {
	id, ok := formID(c, "word_id")
	if !ok {
		return
	}
	field := c.PostForm("changed_field")
	edit, err := s.bank.UpdateWordField(c.Request.Context(), id, field, c.PostForm("new_value"))
	switch {
	case errors.Is(err, store.ErrFieldNotEditable):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	case err != nil:
		abortError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, remote.FieldEdit{
		Success:      true,
		ChangedField: edit.Field,
		OldValue:     edit.OldValue,
		NewValue:     edit.NewValue,
		UpdatedAt:    edit.EditedAt.Local().Format(time.DateTime),
	})
}

func (s *Server) resetTestBlock(c *gin.Context) {
	b, ok := s.block(c, c.PostForm("learning_block"))
	if !ok {
		return
	}
	n, err := s.bank.ResetBlock(c.Request.Context(), b.ID)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": n})
}

// addWordInfo appends a blank word to the block for the editor to fill in.
func (s *Server) addWordInfo(c *gin.Context) {
	b, ok := s.block(c, c.PostForm("learning_block_slug"))
	if !ok {
		return
	}
	if raw := c.PostForm("learning_block_id"); raw != "" && raw != strconv.Itoa(b.ID) {
		abortError(c, http.StatusBadRequest, errors.New("learning_block_id does not match learning_block_slug"))
		return
	}
	w, err := s.bank.AddWord(c.Request.Context(), b.ID, store.Word{})
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "word_id": w.ID})
}
