// Package study runs review sessions on top of the sm2 scheduler and a storage.Store.
package study

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/conorfennell/chapterdeck/internal/domain"
	"github.com/conorfennell/chapterdeck/internal/sm2"
	"github.com/conorfennell/chapterdeck/internal/storage"
	"github.com/google/uuid"
)

// Service applies scheduling decisions to stored decks.
type Service struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time

	// reviewMu serializes the read-modify-write of a review so two reviews
	// of one card never interleave.
	reviewMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service over store.
func NewService(store storage.Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueueEntry is one card of a study session with its scheduling state.
type QueueEntry struct {
	Card   domain.Card         `json:"card"`
	Record *domain.StudyRecord `json:"record,omitempty"`
	Due    bool                `json:"due"`
}

// Decks lists the decks that have cards.
func (s *Service) Decks() ([]string, error) {
	return s.store.Decks()
}

// Card returns one card of deck and its record, which is nil for a new card.
func (s *Service) Card(deck, cardID string) (domain.Card, *domain.StudyRecord, error) {
	card, err := s.findCard(deck, cardID)
	if err != nil {
		return domain.Card{}, nil, err
	}
	rec, err := s.store.Records(deck).Get(cardID)
	if err != nil {
		return domain.Card{}, nil, err
	}
	return card, rec, nil
}

// Review scores one answer and persists the updated record and a review log.
func (s *Service) Review(deck, cardID string, rating sm2.Rating) (domain.StudyRecord, error) {
	if !rating.IsValid() {
		return domain.StudyRecord{}, fmt.Errorf("%w: %q", domain.ErrInvalidRating, rating)
	}
	if _, err := s.findCard(deck, cardID); err != nil {
		return domain.StudyRecord{}, err
	}

	s.reviewMu.Lock()
	defer s.reviewMu.Unlock()

	repo := s.store.Records(deck)
	prev, err := repo.Get(cardID)
	if err != nil {
		return domain.StudyRecord{}, err
	}

	now := s.now()
	next := sm2.ProcessReview(cardID, rating.Quality(), prev, now)
	if err := repo.Set(cardID, next); err != nil {
		return domain.StudyRecord{}, err
	}

	log := domain.ReviewLog{
		ID:         uuid.NewString(),
		CardID:     cardID,
		Rating:     string(rating),
		Quality:    int(rating.Quality()),
		Interval:   next.Interval,
		Ease:       next.Ease,
		ReviewedAt: now,
	}
	if err := s.store.AppendReviewLog(deck, log); err != nil {
		// The record is already saved at this point.
		s.logger.Warn("Failed to append review log", "deck", deck, "card", cardID, "error", err)
	}

	s.logger.Info("Card reviewed",
		"deck", deck,
		"card", cardID,
		"rating", rating,
		"interval", next.Interval,
		"ease", next.Ease,
		"next_review", next.NextReview.Format(time.DateOnly),
	)
	return next, nil
}

// Queue returns the cards of deck in study order. limit <= 0 returns every card.
func (s *Service) Queue(deck string, limit int) ([]QueueEntry, error) {
	cards, records, err := s.load(deck)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Card, len(cards))
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	now := s.now()
	ordered := sm2.SortByPriority(ids, records, now)
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}

	entries := make([]QueueEntry, 0, len(ordered))
	for _, id := range ordered {
		entry := QueueEntry{Card: byID[id]}
		if rec, ok := records[id]; ok {
			rec = rec.Clone()
			entry.Record = &rec
		}
		entry.Due = sm2.IsCardDue(entry.Record, now)
		entries = append(entries, entry)
	}
	return entries, nil
}

// Stats summarizes deck.
func (s *Service) Stats(deck string) (sm2.Stats, error) {
	cards, records, err := s.load(deck)
	if err != nil {
		return sm2.Stats{}, err
	}
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return sm2.ComputeStats(ids, records, s.now()), nil
}

// Preview shows what each rating would schedule for a card. Nothing is written.
func (s *Service) Preview(deck, cardID string) ([]sm2.Preview, error) {
	_, rec, err := s.Card(deck, cardID)
	if err != nil {
		return nil, err
	}
	return sm2.PreviewRatings(rec), nil
}

// History lists the reviews of a card, oldest first.
func (s *Service) History(deck, cardID string) ([]domain.ReviewLog, error) {
	if _, err := s.findCard(deck, cardID); err != nil {
		return nil, err
	}
	return s.store.ReviewLogs(deck, cardID)
}

func (s *Service) load(deck string) ([]domain.Card, map[string]domain.StudyRecord, error) {
	cards, err := s.store.Cards(deck)
	if err != nil {
		return nil, nil, err
	}
	if len(cards) == 0 {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrDeckNotFound, deck)
	}
	records, err := s.store.Records(deck).GetAll()
	if err != nil {
		return nil, nil, err
	}
	return cards, records, nil
}

func (s *Service) findCard(deck, cardID string) (domain.Card, error) {
	cards, err := s.store.Cards(deck)
	if err != nil {
		return domain.Card{}, err
	}
	i := slices.IndexFunc(cards, func(c domain.Card) bool { return c.ID == cardID })
	if i < 0 {
		return domain.Card{}, fmt.Errorf("%w: %q in deck %q", domain.ErrCardNotFound, cardID, deck)
	}
	return cards[i], nil
}
