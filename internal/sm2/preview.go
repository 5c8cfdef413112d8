package sm2

import (
	"fmt"
	"math"

	"github.com/conorfennell/chapterdeck/internal/domain"
)

// Preview is the outcome one rating would produce.
type Preview struct {
	Rating   Rating `json:"rating"`
	Interval int    `json:"interval"`
	Label    string `json:"label"`
}

// PreviewRatings computes, for every rating, the interval a review would
// schedule right now. rec may be nil and is never modified.
func PreviewRatings(rec *domain.StudyRecord) []Preview {
	cur := stateOf(rec)
	out := make([]Preview, 0, len(Ratings))
	for _, r := range Ratings {
		q := r.Quality()
		days := NextInterval(cur.consecutiveCorrect, cur.interval, NextEase(cur.ease, q), q)
		out = append(out, Preview{Rating: r, Interval: days, Label: FormatInterval(days)})
	}
	return out
}

// FormatInterval renders a day count as a short label such as "6d", "2w" or "3mo".
func FormatInterval(days int) string {
	switch {
	case days <= 1:
		return "1d"
	case days < 7:
		return fmt.Sprintf("%dd", days)
	case days < 30:
		return fmt.Sprintf("%dw", int(math.Round(float64(days)/7)))
	case days < 365:
		return fmt.Sprintf("%dmo", int(math.Round(float64(days)/30)))
	default:
		return "1+ year"
	}
}
