package sm2

import (
	"fmt"
	"strings"

	"github.com/conorfennell/chapterdeck/internal/domain"
)

// Quality is the 0-5 recall score used by the ease and interval formulas.
// 0 is total failure, 5 perfect recall.
type Quality int

const (
	MinQuality Quality = 0
	MaxQuality Quality = 5

	// CorrectThreshold is the lowest quality that counts towards the consecutive streak.
	CorrectThreshold Quality = 3
)

// Clamp returns q limited to [MinQuality, MaxQuality].
func (q Quality) Clamp() Quality {
	if q < MinQuality {
		return MinQuality
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}

// IsCorrect reports whether q meets CorrectThreshold.
func (q Quality) IsCorrect() bool {
	return q.Clamp() >= CorrectThreshold
}

// Rating is the user-facing answer button.
type Rating string

const (
	Again Rating = "again"
	Hard  Rating = "hard"
	Good  Rating = "good"
	Easy  Rating = "easy"
)

// Ratings lists every rating in button order.
var Ratings = []Rating{Again, Hard, Good, Easy}

var ratingQuality = map[Rating]Quality{
	Again: 0,
	Hard:  2,
	Good:  4,
	Easy:  5,
}

// IsValid reports whether r is one of the four ratings.
func (r Rating) IsValid() bool {
	_, ok := ratingQuality[r]
	return ok
}

// Quality maps r onto the 0-5 scale. Invalid ratings map to 0.
func (r Rating) Quality() Quality {
	return ratingQuality[r]
}

// ParseRating accepts a rating name in any case.
func ParseRating(s string) (Rating, error) {
	r := Rating(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidRating, s)
	}
	return r, nil
}
