package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/conorfennell/chapterdeck/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCardNotFound), errors.Is(err, domain.ErrDeckNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRating):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		s.respondJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}
	s.respondJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) respondStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.logger.Debug("Rejected request", "path", r.URL.Path, "status", status, "reason", message)
	s.respondJSON(w, status, errorResponse{Error: message})
}

// renderMarkdown converts a card answer to HTML. The parser keeps state
// between blocks, so each call gets its own.
func renderMarkdown(src string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return string(markdown.ToHTML([]byte(src), p, renderer))
}
