// Package sm2 schedules flashcard reviews with a fixed-step SM-2 variant.
//
// Every function is pure: inputs are never mutated and the current time is
// always passed in, so callers own persistence and the clock.
package sm2

import (
	"math"
	"time"

	"github.com/conorfennell/chapterdeck/internal/domain"
)

const (
	DefaultEase = 2.5
	MinEase     = 1.3

	// MaxInterval caps the interval of mature cards, in days.
	MaxInterval = 365

	// LearningPhaseThresholdDays separates learning cards from review cards.
	LearningPhaseThresholdDays = 7

	firstStepDays  = 1
	secondStepDays = 6
)

// NextEase applies the SM-2 ease recurrence for quality q. The result is floored at MinEase.
func NextEase(ease float64, q Quality) float64 {
	delta := float64(MaxQuality - q.Clamp())
	adjustment := 0.1 - delta*(0.08+delta*0.02)
	return math.Max(MinEase, ease+adjustment)
}

// NextInterval returns the next interval in days. consecutiveCorrect is the
// streak before the review being scored and newEase the already-updated ease.
func NextInterval(consecutiveCorrect, currentInterval int, newEase float64, q Quality) int {
	switch {
	case !q.IsCorrect():
		return firstStepDays
	case consecutiveCorrect <= 0:
		return firstStepDays
	case consecutiveCorrect == 1:
		return secondStepDays
	}
	next := int(math.Round(float64(currentInterval) * newEase))
	if next > MaxInterval {
		return MaxInterval
	}
	return next
}

// state is the sanitized subset of a record the formulas read.
type state struct {
	ease               float64
	interval           int
	consecutiveCorrect int
	reviewCount        int
}

// stateOf reads rec, substituting defaults for a missing record or out-of-range fields.
func stateOf(rec *domain.StudyRecord) state {
	s := state{ease: DefaultEase}
	if rec == nil {
		return s
	}
	switch {
	case rec.Ease <= 0 || math.IsNaN(rec.Ease):
		s.ease = DefaultEase
	case rec.Ease < MinEase:
		s.ease = MinEase
	default:
		s.ease = rec.Ease
	}
	s.interval = min(max(rec.Interval, 0), MaxInterval)
	s.consecutiveCorrect = max(rec.ConsecutiveCorrect, 0)
	s.reviewCount = max(rec.ReviewCount, 0)
	return s
}

// ProcessReview scores one review of cardID and returns the updated record.
// prev may be nil for a new card and is never modified.
func ProcessReview(cardID string, q Quality, prev *domain.StudyRecord, now time.Time) domain.StudyRecord {
	q = q.Clamp()
	cur := stateOf(prev)

	newEase := NextEase(cur.ease, q)
	newConsecutive := 0
	if q.IsCorrect() {
		newConsecutive = cur.consecutiveCorrect + 1
	}
	// The interval branch is chosen by the streak before this review.
	newInterval := NextInterval(cur.consecutiveCorrect, cur.interval, newEase, q)

	reviewed := now
	return domain.StudyRecord{
		CardID:             cardID,
		LastReviewed:       &reviewed,
		NextReview:         StartOfDay(now).AddDate(0, 0, newInterval),
		Ease:               newEase,
		Interval:           newInterval,
		ReviewCount:        cur.reviewCount + 1,
		ConsecutiveCorrect: newConsecutive,
	}
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
