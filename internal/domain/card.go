package domain

import "time"

// Card represents a single question-answer entry belonging to a deck.
type Card struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Chapter  string `json:"chapter,omitempty"`
	Source   string `json:"source,omitempty"`
}

// StudyRecord is the scheduling state of one card. A card without a record is new.
type StudyRecord struct {
	CardID             string     `json:"cardId"`
	LastReviewed       *time.Time `json:"lastReviewed,omitempty"` // nil before first review.
	NextReview         time.Time  `json:"nextReview"`
	Ease               float64    `json:"ease"`
	Interval           int        `json:"interval"` // days
	ReviewCount        int        `json:"reviewCount"`
	ConsecutiveCorrect int        `json:"consecutiveCorrect"`
}

// Clone returns a copy of the record that shares no pointers with r.
func (r StudyRecord) Clone() StudyRecord {
	out := r
	if r.LastReviewed != nil {
		v := *r.LastReviewed
		out.LastReviewed = &v
	}
	return out
}

// ReviewLog records a single review event for a card.
// Rating is one of again, hard, good, easy and Quality its 0-5 value.
type ReviewLog struct {
	ID         string    `json:"id"`
	CardID     string    `json:"cardId"`
	Rating     string    `json:"rating"`
	Quality    int       `json:"quality"`
	Interval   int       `json:"interval"`
	Ease       float64   `json:"ease"`
	ReviewedAt time.Time `json:"reviewedAt"`
}
