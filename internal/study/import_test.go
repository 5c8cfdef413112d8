package study

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conorfennell/chapterdeck/internal/sm2"
	"github.com/conorfennell/chapterdeck/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportReconcilesDeck(t *testing.T) {
	svc, _, ids := newTestService(t)

	_, err := svc.Review(deck, ids[2], sm2.Good)
	require.NoError(t, err)

	dir := t.TempDir()
	writeFile(t, dir, "ch1.md", "# Cells\nQ: What encloses a cell?\nA: The membrane\n\nQ: What makes ATP?\nA: Mitochondria\n")
	writeFile(t, dir, "ch3.md", "Q: What is osmosis?\nA: Diffusion of water\n")
	writeFile(t, dir, "notes.txt", "Q: ignored\n")
	writeFile(t, dir, "broken.xlsx", "not a workbook")

	result, err := svc.Import(deck, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Files)
	assert.Equal(t, 3, result.Parsed)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Removed)
	assert.Len(t, result.Errors, 1)

	_, _, err = svc.Card(deck, ids[2])
	require.Error(t, err, "removed card is no longer in the deck")

	// Bringing the genetics chapter back restores the card with its record.
	writeFile(t, dir, "ch2.md", "# Genetics\nQ: What carries genes?\nA: DNA\n")
	require.NoError(t, os.Remove(filepath.Join(dir, "broken.xlsx")))
	result, err = svc.Import(deck, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Empty(t, result.Errors)

	_, rec, err := svc.Card(deck, ids[2])
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.ReviewCount)
}

func TestImportKeepsCardsOfUnparsableFile(t *testing.T) {
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "study.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	svc := NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	dir := t.TempDir()
	writeFile(t, dir, "ch1.md", "# Cells\nQ: What encloses a cell?\nA: The membrane\n")
	writeFile(t, dir, "ch2.md", "# Genetics\nQ: What carries genes?\nA: DNA\n")
	_, err = svc.Import(deck, dir)
	require.NoError(t, err)
	cards, err := store.Cards(deck)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	genetics := cards[1].ID

	writeFile(t, dir, "ch2.md", "# Genetics\nQ: What carries genes?\nA: DNA\n"+strings.Repeat("x", 2<<20)+"\n")
	result, err := svc.Import(deck, dir)
	require.NoError(t, err)
	assert.Len(t, result.Errors, 1)
	assert.Zero(t, result.Removed)

	card, _, err := svc.Card(deck, genetics)
	require.NoError(t, err, "cards of a file that failed to parse stay in the deck")
	assert.Equal(t, "What carries genes?", card.Question)

	stats, err := svc.Stats(deck)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
}

func TestImportDeduplicatesCards(t *testing.T) {
	svc, _, _ := newTestService(t)

	dir := t.TempDir()
	writeFile(t, dir, "a.md", "Q: Same\nA: Card\n")
	writeFile(t, dir, "b.md", "Q: same \nA: card\n")

	result, err := svc.Import("dupes", dir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Parsed)

	cards, err := svc.Queue("dupes", 0)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, filepath.Join(dir, "a.md"), cards[0].Card.Source)
}

func TestImportMissingDir(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Import(deck, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
