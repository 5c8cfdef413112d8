package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/conorfennell/chapterdeck/internal/domain"
	"github.com/conorfennell/chapterdeck/internal/sm2"
	"github.com/go-chi/chi/v5"
)

type cardResponse struct {
	Card       domain.Card         `json:"card"`
	Record     *domain.StudyRecord `json:"record,omitempty"`
	AnswerHTML string              `json:"answerHtml"`
}

// maxReviewBodyBytes caps the size of a review request body.
const maxReviewBodyBytes = 1 << 10

type reviewRequest struct {
	Rating string `json:"rating"`
}

type reviewResponse struct {
	Record domain.StudyRecord `json:"record"`
	Label  string             `json:"label"`
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) handleListDecks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decks, err := s.study.Decks()
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if decks == nil {
			decks = []string{}
		}
		s.respondJSON(w, http.StatusOK, map[string][]string{"decks": decks})
	}
}

func (s *Server) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.study.Stats(chi.URLParam(r, "deck"))
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, stats)
	}
}

// handleQueue lists the deck in study order. An optional limit caps the result.
func (s *Server) handleQueue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				s.respondStatus(w, r, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
				return
			}
			limit = n
		}

		entries, err := s.study.Queue(chi.URLParam(r, "deck"), limit)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) handleGetCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, rec, err := s.study.Card(chi.URLParam(r, "deck"), chi.URLParam(r, "id"))
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, cardResponse{
			Card:       card,
			Record:     rec,
			AnswerHTML: renderMarkdown(card.Answer),
		})
	}
}

func (s *Server) handlePreview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		previews, err := s.study.Preview(chi.URLParam(r, "deck"), chi.URLParam(r, "id"))
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, previews)
	}
}

func (s *Server) handleHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := s.study.History(chi.URLParam(r, "deck"), chi.URLParam(r, "id"))
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if logs == nil {
			logs = []domain.ReviewLog{}
		}
		s.respondJSON(w, http.StatusOK, logs)
	}
}

// handleReview scores an answer and returns the new schedule.
func (s *Server) handleReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		body := http.MaxBytesReader(w, r.Body, maxReviewBodyBytes)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.respondStatus(w, r, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			s.respondStatus(w, r, http.StatusBadRequest, "invalid request body")
			return
		}
		rating, err := sm2.ParseRating(req.Rating)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		rec, err := s.study.Review(chi.URLParam(r, "deck"), chi.URLParam(r, "id"), rating)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, reviewResponse{
			Record: rec,
			Label:  sm2.FormatInterval(rec.Interval),
		})
	}
}
