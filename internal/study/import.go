package study

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/conorfennell/chapterdeck/internal/cardid"
	"github.com/conorfennell/chapterdeck/internal/domain"
	"github.com/conorfennell/chapterdeck/internal/parser"
)

// ImportResult reports what an import changed.
type ImportResult struct {
	Deck    string  `json:"deck"`
	Files   int     `json:"files"`
	Parsed  int     `json:"parsed"`
	Added   int     `json:"added"`
	Removed int     `json:"removed"`
	Errors  []error `json:"-"`
}

// Import reconciles deck with the card files under dir. Cards that are no
// longer present are removed from the deck; their study records stay so a
// card that comes back resumes its schedule. Cards sourced from a file that
// fails to parse are left alone until the file parses again.
func (s *Service) Import(deck, dir string) (ImportResult, error) {
	result := ImportResult{Deck: deck}
	var parsed []domain.Card
	seen := make(map[string]bool)
	failed := make(map[string]bool)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !parser.Supported(d.Name()) {
			return nil
		}
		result.Files++
		fileCards, parseErr := parser.ParsePath(path)
		if parseErr != nil {
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, parseErr))
			failed[path] = true
			return nil
		}
		cardid.Assign(fileCards)
		for _, card := range fileCards {
			if seen[card.ID] {
				s.logger.Debug("Duplicate card skipped", "id", card.ID, "source", card.Source)
				continue
			}
			seen[card.ID] = true
			parsed = append(parsed, card)
		}
		return nil
	})
	if walkErr != nil {
		return result, fmt.Errorf("walking %s: %w", dir, walkErr)
	}
	result.Parsed = len(parsed)

	existing, err := s.store.Cards(deck)
	if err != nil {
		return result, err
	}
	var orphaned []string
	for _, c := range existing {
		if failed[c.Source] {
			s.logger.Warn("Keeping card of unparsable file", "deck", deck, "id", c.ID, "source", c.Source)
			continue
		}
		if !seen[c.ID] {
			s.logger.Info("Orphaned card, removing from deck", "deck", deck, "id", c.ID)
			orphaned = append(orphaned, c.ID)
		}
	}
	if err := s.store.DeleteCards(deck, orphaned); err != nil {
		return result, err
	}
	result.Removed = len(orphaned)

	added, err := s.store.PutCards(deck, parsed)
	if err != nil {
		return result, err
	}
	result.Added = added

	s.logger.Info("Import complete",
		"deck", deck,
		"path", dir,
		"files", result.Files,
		"parsed_cards", result.Parsed,
		"added", result.Added,
		"orphaned_removed", result.Removed,
		"errors", len(result.Errors),
	)
	return result, nil
}
