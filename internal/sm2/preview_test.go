package sm2

import (
	"testing"

	"github.com/conorfennell/chapterdeck/internal/domain"
)

func TestFormatInterval(t *testing.T) {
	testCases := []struct {
		days     int
		expected string
	}{
		{1, "1d"},
		{3, "3d"},
		{6, "6d"},
		{7, "1w"},
		{11, "2w"},
		{29, "4w"},
		{30, "1mo"},
		{45, "2mo"},
		{364, "12mo"},
		{365, "1+ year"},
	}

	for _, tc := range testCases {
		if got := FormatInterval(tc.days); got != tc.expected {
			t.Errorf("Expected FormatInterval(%d) to be %q, but got %q", tc.days, tc.expected, got)
		}
	}
}

func TestPreviewRatings(t *testing.T) {
	t.Run("new card", func(t *testing.T) {
		previews := PreviewRatings(nil)
		if len(previews) != len(Ratings) {
			t.Fatalf("Expected %d previews, but got %d", len(Ratings), len(previews))
		}
		for i, p := range previews {
			if p.Rating != Ratings[i] {
				t.Errorf("Expected rating %s at %d, but got %s", Ratings[i], i, p.Rating)
			}
			if p.Interval != 1 || p.Label != "1d" {
				t.Errorf("Expected 1 day for %s on a new card, but got %d (%s)", p.Rating, p.Interval, p.Label)
			}
		}
	})

	t.Run("mature card", func(t *testing.T) {
		rec := domain.StudyRecord{CardID: "c", Ease: 2.5, Interval: 15, ConsecutiveCorrect: 3, ReviewCount: 3}
		expected := map[Rating]Preview{
			Again: {Again, 1, "1d"},
			Hard:  {Hard, 1, "1d"},
			Good:  {Good, 38, "1mo"},
			Easy:  {Easy, 39, "1mo"},
		}
		for _, p := range PreviewRatings(&rec) {
			if p != expected[p.Rating] {
				t.Errorf("Expected %+v, but got %+v", expected[p.Rating], p)
			}
		}
		if rec.Interval != 15 || rec.Ease != 2.5 || rec.ReviewCount != 3 {
			t.Errorf("Expected preview to leave the record alone, but got %+v", rec)
		}
	})

	t.Run("matches process review", func(t *testing.T) {
		rec := domain.StudyRecord{CardID: "c", Ease: 2.1, Interval: 6, ConsecutiveCorrect: 2}
		for _, p := range PreviewRatings(&rec) {
			got := ProcessReview("c", p.Rating.Quality(), &rec, t0)
			if got.Interval != p.Interval {
				t.Errorf("Expected preview of %s to predict %d, but review gave %d", p.Rating, p.Interval, got.Interval)
			}
		}
	})
}
