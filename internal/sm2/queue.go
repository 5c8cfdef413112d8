package sm2

import (
	"sort"
	"time"

	"github.com/conorfennell/chapterdeck/internal/domain"
)

// IsCardDue reports whether a card should be shown today. Cards without a
// record are always due. Time of day is ignored.
func IsCardDue(rec *domain.StudyRecord, now time.Time) bool {
	if rec == nil {
		return true
	}
	due := StartOfDay(rec.NextReview.In(now.Location()))
	return !due.After(StartOfDay(now))
}

// SortByPriority returns cardIDs ordered for a study session: reviewed cards
// before new ones, due before not yet due, then by earliest next review.
// The sort is stable and cardIDs is left untouched.
func SortByPriority(cardIDs []string, records map[string]domain.StudyRecord, now time.Time) []string {
	out := make([]string, len(cardIDs))
	copy(out, cardIDs)

	sort.SliceStable(out, func(i, j int) bool {
		return comparePriority(lookup(records, out[i]), lookup(records, out[j]), now) < 0
	})
	return out
}

// comparePriority orders two records; nil means the card is new.
func comparePriority(a, b *domain.StudyRecord, now time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	aDue, bDue := IsCardDue(a, now), IsCardDue(b, now)
	if aDue != bDue {
		if aDue {
			return -1
		}
		return 1
	}
	return a.NextReview.Compare(b.NextReview)
}

func lookup(records map[string]domain.StudyRecord, id string) *domain.StudyRecord {
	rec, ok := records[id]
	if !ok {
		return nil
	}
	return &rec
}
