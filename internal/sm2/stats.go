package sm2

import (
	"time"

	"github.com/conorfennell/chapterdeck/internal/domain"
)

// Stats summarizes a deck. New, Learning and Review partition Total; Due
// counts only cards that have a record.
type Stats struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Learning int `json:"learning"`
	Review   int `json:"review"`
	Due      int `json:"due"`
}

// ComputeStats counts cardIDs by phase and due status in a single pass.
func ComputeStats(cardIDs []string, records map[string]domain.StudyRecord, now time.Time) Stats {
	var s Stats
	for _, id := range cardIDs {
		s.Total++
		rec, ok := records[id]
		if !ok {
			s.New++
			continue
		}
		if rec.Interval < LearningPhaseThresholdDays {
			s.Learning++
		} else {
			s.Review++
		}
		if IsCardDue(&rec, now) {
			s.Due++
		}
	}
	return s
}
