// Package api exposes the HTTP interface for the quiz service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/portrait-quiz/internal/config"
	"github.com/JakeFAU/portrait-quiz/internal/metrics"
	"github.com/JakeFAU/portrait-quiz/internal/quiz"
	"github.com/JakeFAU/portrait-quiz/internal/refill"
)

// QuizSource hands out cached quiz entries.
type QuizSource interface {
	Next(ctx context.Context) (quiz.Entry, error)
	Len() int
}

// Server wires HTTP handlers to the quiz cache.
type Server struct {
	router  chi.Router
	quizzes QuizSource
	idGen   quiz.IDGenerator
	cfg     config.ServerConfig
	logger  *zap.Logger
}

type quizResponse struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Hint        string `json:"hint"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	RequestID   string `json:"requestId"`
}

// NewServer constructs a Server with middleware and routes.
func NewServer(quizzes QuizSource, idGen quiz.IDGenerator, cfg config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.QuizWaitTimeout <= 0 {
		cfg.QuizWaitTimeout = 120 * time.Second
	}
	s := &Server{
		quizzes: quizzes,
		idGen:   idGen,
		cfg:     cfg,
		logger:  logger.Named("api"),
	}
	r := chi.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/api/quiz", s.getQuiz)

	if cfg.StaticDir != "" {
		r.Handle("/*", staticHandler(cfg.StaticDir))
	}

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "cached": s.quizzes.Len()})
}

func (s *Server) getQuiz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	requestID := requestIDFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.QuizWaitTimeout)
	defer cancel()

	entry, err := s.quizzes.Next(ctx)
	if errors.Is(err, refill.ErrCacheEmpty) {
		s.logger.Warn("quiz unavailable", zap.String("request_id", requestID), zap.Error(err))
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":     "no quiz is ready yet, please retry shortly",
			"requestId": requestID,
		})
		return
	}
	if err != nil {
		metrics.ObserveServe("error")
		s.internalError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, quizResponse{
		Name:        entry.Name,
		Image:       entry.Image,
		Hint:        entry.Hint,
		Description: entry.Description,
		ImageURL:    entry.Image,
		RequestID:   requestID,
	})
}

// internalError logs err under a fresh error id and answers 500 with only
// that id.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	errorID := s.newID()
	s.logger.Error("request failed",
		zap.String("error_id", errorID),
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "internal server error",
		"errorId": errorID,
	})
}

func (s *Server) newID() string {
	if s.idGen != nil {
		if id, err := s.idGen.NewID(); err == nil {
			return id
		}
	}
	return uuid.NewString()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func staticHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		files.ServeHTTP(w, r)
	})
}
