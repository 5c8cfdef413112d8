package cardid

import (
	"testing"

	"github.com/conorfennell/chapterdeck/internal/domain"
)

func TestNormalize(t *testing.T) {
	card := domain.Card{
		Question: "  What is Osmosis? \r\n",
		Answer:   "Diffusion of WATER.",
		Chapter:  "Cell Biology",
	}
	expected := "what is osmosis?\ndiffusion of water.\ncell biology"
	if got := Normalize(card); got != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, got)
	}
}

func TestID(t *testing.T) {
	t.Run("generates correct id", func(t *testing.T) {
		card := domain.Card{Question: "Q", Answer: "A", Chapter: "C"}
		// Prefix of the SHA-256 of "q\na\nc".
		expected := "eb2456c1ee4f3630"
		if got := ID(card); got != expected {
			t.Errorf("Expected ID '%s', but got '%s'", expected, got)
		}
	})

	t.Run("id is deterministic", func(t *testing.T) {
		if ID(domain.Card{Question: "Test"}) != ID(domain.Card{Question: "Test"}) {
			t.Error("Expected IDs for identical cards to be the same")
		}
	})

	t.Run("normalization produces same id", func(t *testing.T) {
		card1 := domain.Card{Question: "  what is a cell? ", Answer: "The unit of life."}
		card2 := domain.Card{Question: "What Is A Cell?", Answer: "The unit of life."}
		if ID(card1) != ID(card2) {
			t.Error("Expected IDs to be the same after normalization, but they were different.")
		}
	})

	t.Run("source does not affect id", func(t *testing.T) {
		card1 := domain.Card{Question: "Q", Source: "ch1.md"}
		card2 := domain.Card{Question: "Q", Source: "moved/ch1.md"}
		if ID(card1) != ID(card2) {
			t.Error("Expected moving a file to keep card IDs stable")
		}
	})

	t.Run("different cards have different ids", func(t *testing.T) {
		if ID(domain.Card{Question: "Card 1"}) == ID(domain.Card{Question: "Card 2"}) {
			t.Error("Expected IDs for different cards to be different")
		}
	})
}

func TestAssign(t *testing.T) {
	cards := []domain.Card{{Question: "one"}, {ID: "fixed", Question: "two"}}
	Assign(cards)
	if cards[0].ID != ID(domain.Card{Question: "one"}) {
		t.Errorf("Expected generated ID, but got '%s'", cards[0].ID)
	}
	if cards[1].ID != "fixed" {
		t.Errorf("Expected existing ID to be kept, but got '%s'", cards[1].ID)
	}
}
