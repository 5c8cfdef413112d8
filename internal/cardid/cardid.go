// Package cardid derives stable card identifiers from card content.
package cardid

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/conorfennell/chapterdeck/internal/domain"
)

// idLength is the number of hex characters kept from the digest.
const idLength = 16

// Normalize joins the lowercased, trimmed question, answer and chapter with
// newlines. Line endings are normalized so the same card typed on different
// platforms gets the same ID.
func Normalize(card domain.Card) string {
	parts := []string{card.Question, card.Answer, card.Chapter}
	for i, p := range parts {
		p = strings.ReplaceAll(p, "\r\n", "\n")
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "\n")
}

// ID returns the content-derived identifier for card.
func ID(card domain.Card) string {
	sum := sha256.Sum256([]byte(Normalize(card)))
	return hex.EncodeToString(sum[:])[:idLength]
}

// Assign fills in the ID of every card that has none.
func Assign(cards []domain.Card) {
	for i := range cards {
		if cards[i].ID == "" {
			cards[i].ID = ID(cards[i])
		}
	}
}
