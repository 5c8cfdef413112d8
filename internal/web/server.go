// Package web exposes the study service as a JSON HTTP API.
package web

import (
	"log/slog"
	"net/http"

	"github.com/conorfennell/chapterdeck/internal/study"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	study  *study.Service
	logger *slog.Logger
	router chi.Router
}

// NewServer creates and configures a new server.
func NewServer(svc *study.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		study:  svc,
		logger: logger,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth())
	s.router.Get("/decks", s.handleListDecks())

	s.router.Route("/decks/{deck}", func(r chi.Router) {
		r.Get("/stats", s.handleStats())
		r.Get("/queue", s.handleQueue())

		r.Route("/cards/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetCard())
			r.Get("/preview", s.handlePreview())
			r.Get("/history", s.handleHistory())
			r.Post("/review", s.handleReview())
		})
	})
}
