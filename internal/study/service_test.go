package study

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/conorfennell/chapterdeck/internal/domain"
	"github.com/conorfennell/chapterdeck/internal/sm2"
	"github.com/conorfennell/chapterdeck/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deck = "biology"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// newTestService imports a three-card deck into a fresh sqlite store.
func newTestService(t *testing.T) (*Service, *clock, []string) {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "study.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clk := &clock{now: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, logger, WithClock(clk.Now))

	dir := t.TempDir()
	writeFile(t, dir, "ch1.md", "# Cells\nQ: What encloses a cell?\nA: The membrane\n\nQ: What makes ATP?\nA: Mitochondria\n")
	writeFile(t, dir, "ch2.md", "# Genetics\nQ: What carries genes?\nA: DNA\n")
	_, err = svc.Import(deck, dir)
	require.NoError(t, err)

	cards, err := store.Cards(deck)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	ids := []string{cards[0].ID, cards[1].ID, cards[2].ID}
	return svc, clk, ids
}

func TestReviewGraduation(t *testing.T) {
	svc, clk, ids := newTestService(t)

	expected := []int{1, 6, 15}
	for i, interval := range expected {
		rec, err := svc.Review(deck, ids[0], sm2.Good)
		require.NoError(t, err)
		assert.Equal(t, interval, rec.Interval, "review %d", i+1)
		assert.Equal(t, i+1, rec.ReviewCount)
		clk.advanceDays(rec.Interval)
	}

	logs, err := svc.History(deck, ids[0])
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "good", logs[0].Rating)
	assert.Equal(t, 4, logs[0].Quality)
	assert.Equal(t, 15, logs[2].Interval)
	assert.NotEmpty(t, logs[0].ID)
	assert.NotEqual(t, logs[0].ID, logs[1].ID)

	rec, err := svc.Review(deck, ids[0], sm2.Again)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Interval)
	assert.Equal(t, 0, rec.ConsecutiveCorrect)
	assert.InDelta(t, 1.7, rec.Ease, 1e-9)
}

func TestReviewErrors(t *testing.T) {
	svc, _, ids := newTestService(t)

	_, err := svc.Review(deck, ids[0], sm2.Rating("perfect"))
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	_, err = svc.Review(deck, "nope", sm2.Good)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)

	_, err = svc.Review("chemistry", ids[0], sm2.Good)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestQueue(t *testing.T) {
	svc, clk, ids := newTestService(t)

	// ids[1] becomes due tomorrow, ids[2] in six days.
	_, err := svc.Review(deck, ids[1], sm2.Good)
	require.NoError(t, err)
	_, err = svc.Review(deck, ids[2], sm2.Good)
	require.NoError(t, err)
	clk.advanceDays(1)
	_, err = svc.Review(deck, ids[2], sm2.Good)
	require.NoError(t, err)

	queue, err := svc.Queue(deck, 0)
	require.NoError(t, err)
	require.Len(t, queue, 3)
	assert.Equal(t, ids[1], queue[0].Card.ID)
	assert.True(t, queue[0].Due)
	assert.Equal(t, ids[2], queue[1].Card.ID)
	assert.False(t, queue[1].Due)
	assert.Equal(t, ids[0], queue[2].Card.ID)
	assert.Nil(t, queue[2].Record)
	assert.True(t, queue[2].Due, "new cards are always due")

	limited, err := svc.Queue(deck, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, ids[1], limited[0].Card.ID)

	// Entries own their records.
	require.NotNil(t, queue[0].Record.LastReviewed)
	require.NotSame(t, queue[0].Record.LastReviewed, queue[1].Record.LastReviewed)
	_, rec, err := svc.Card(deck, ids[1])
	require.NoError(t, err)
	assert.Equal(t, *rec, *limited[0].Record)

	_, err = svc.Queue("chemistry", 0)
	assert.ErrorIs(t, err, domain.ErrDeckNotFound)
}

func TestStats(t *testing.T) {
	svc, clk, ids := newTestService(t)

	stats, err := svc.Stats(deck)
	require.NoError(t, err)
	assert.Equal(t, sm2.Stats{Total: 3, New: 3}, stats)

	// Graduate ids[0] to a 15 day interval, ending on day 7.
	for _, wait := range []int{1, 6, 0} {
		_, err := svc.Review(deck, ids[0], sm2.Good)
		require.NoError(t, err)
		clk.advanceDays(wait)
	}
	_, err = svc.Review(deck, ids[1], sm2.Hard)
	require.NoError(t, err)

	stats, err = svc.Stats(deck)
	require.NoError(t, err)
	assert.Equal(t, sm2.Stats{Total: 3, New: 1, Learning: 1, Review: 1, Due: 0}, stats)

	clk.advanceDays(1)
	stats, err = svc.Stats(deck)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Due)
}

func TestPreviewDoesNotWrite(t *testing.T) {
	svc, _, ids := newTestService(t)

	previews, err := svc.Preview(deck, ids[0])
	require.NoError(t, err)
	require.Len(t, previews, 4)
	for _, p := range previews {
		assert.Equal(t, 1, p.Interval)
		assert.Equal(t, "1d", p.Label)
	}

	_, rec, err := svc.Card(deck, ids[0])
	require.NoError(t, err)
	assert.Nil(t, rec, "preview must not create a record")

	_, err = svc.Preview(deck, "nope")
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestConcurrentReviewsOfOneCard(t *testing.T) {
	svc, _, ids := newTestService(t)

	const reviews = 20
	var wg sync.WaitGroup
	for i := 0; i < reviews; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Review(deck, ids[0], sm2.Good)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, rec, err := svc.Card(deck, ids[0])
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, reviews, rec.ReviewCount)
	assert.Equal(t, reviews, rec.ConsecutiveCorrect)
}
