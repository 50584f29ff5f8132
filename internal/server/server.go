// Package server is the offline GeoGem backend: the quizzer and word bank
// endpoints served by gin over the local SQLite word bank.
package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/geogem/internal/store"
)

// Deck sizes.
const (
	MaxDeckSize      = 10
	LearnDeckSize    = 5
	MaxLearnDeckSize = 100
	WrongOptions     = 3
)

// Server serves the quizzer endpoints for the single local learner.
type Server struct {
	bank   *store.WordBank
	engine *gin.Engine

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Server.
type Option func(*Server)

// WithRand fixes the shuffling source, for tests.
func WithRand(r *rand.Rand) Option {
	return func(s *Server) { s.rng = r }
}

// WithRequestLog enables gin's request logger.
func WithRequestLog() Option {
	return func(s *Server) { s.engine.Use(gin.Logger()) }
}

// New builds the router over s.
func New(st *store.Store, opts ...Option) *Server {
	srv := &Server{
		bank:   st.WordBank(),
		engine: gin.New(),
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.engine.Use(gin.Recovery())
	srv.routes()
	return srv
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/csrf/", issueCSRF)

	quizzer := r.Group("/quizzer", requireCSRF)
	{
		quizzer.POST("/learn/", s.learnDeck)
		quizzer.POST("/multiple_choice/", s.multipleChoiceDeck)
		quizzer.POST("/review/", s.reviewDeck)
		quizzer.POST("/check_answer/", s.checkAnswer)
		quizzer.POST("/add_to_learned/", s.addToLearned)
		quizzer.POST("/results/", s.results)
	}

	learn := r.Group("/learn", requireCSRF)
	{
		learn.GET("/blocks/", s.listBlocks)
		learn.GET("/:slug/stats/", s.blockStats)
		learn.GET("/:slug/words/", s.blockWords)
		learn.POST("/edit_word_info/", s.editWordInfo)
		learn.POST("/reset_test_block/", s.resetTestBlock)
		learn.POST("/add_word_info/", s.addWordInfo)
	}
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// shuffle returns n items sampled from items. When n exceeds len(items) the
// list is repeated before sampling.
func shuffle[T any](s *Server, items []T, n int) []T {
	if len(items) == 0 || n <= 0 {
		return nil
	}
	pool := items
	if n > len(items) {
		factor := n/len(items) + 1
		pool = make([]T, 0, len(items)*factor)
		for range factor {
			pool = append(pool, items...)
		}
	} else {
		pool = append([]T(nil), items...)
	}

	s.mu.Lock()
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	s.mu.Unlock()
	return pool[:n]
}

func abortError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
