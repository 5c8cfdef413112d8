// Package digest logs a daily summary of every deck's study state.
package digest

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/conorfennell/chapterdeck/internal/sm2"
	"github.com/conorfennell/chapterdeck/internal/study"
	"github.com/go-co-op/gocron"
)

// Digest is the summary of one deck.
type Digest struct {
	Deck  string    `json:"deck"`
	Stats sm2.Stats `json:"stats"`
}

// Scheduler runs the digest once a day.
type Scheduler struct {
	study     *study.Service
	logger    *slog.Logger
	scheduler *gocron.Scheduler
}

// New creates a Scheduler in the local time zone, which is also the zone
// cards fall due in.
func New(svc *study.Service, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		study:     svc,
		logger:    logger,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start schedules the digest daily at at (HH:MM) and returns immediately.
func (s *Scheduler) Start(at string) error {
	if _, err := time.Parse("15:04", at); err != nil {
		return fmt.Errorf("invalid digest time %q: %w", at, err)
	}
	_, err := s.scheduler.Every(1).Day().At(at).Do(func() {
		if _, err := s.Run(); err != nil {
			s.logger.Error("Digest failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule digest: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("Digest scheduled", "at", at)
	return nil
}

// Stop cancels the scheduled job.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Run computes and logs the digest of every deck.
func (s *Scheduler) Run() ([]Digest, error) {
	decks, err := s.study.Decks()
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}

	digests := make([]Digest, 0, len(decks))
	for _, deck := range decks {
		stats, err := s.study.Stats(deck)
		if err != nil {
			return digests, fmt.Errorf("failed to compute stats for deck %s: %w", deck, err)
		}
		digests = append(digests, Digest{Deck: deck, Stats: stats})
		s.logger.Info("Daily digest",
			"deck", deck,
			"due", stats.Due,
			"new", stats.New,
			"learning", stats.Learning,
			"review", stats.Review,
			"total", stats.Total,
		)
	}
	return digests, nil
}
