// Package storage persists decks, study records and review history.
package storage

import (
	"fmt"

	"github.com/conorfennell/chapterdeck/internal/domain"
)

// Repository holds the study records of one deck, keyed by card ID.
type Repository interface {
	// Get returns the record for cardID, or nil and no error if the card is new.
	Get(cardID string) (*domain.StudyRecord, error)
	Set(cardID string, record domain.StudyRecord) error
	GetAll() (map[string]domain.StudyRecord, error)
}

// Store is the persistent state behind every deck.
type Store interface {
	// Records returns the record repository of deck.
	Records(deck string) Repository

	// PutCards inserts or updates cards in deck and reports how many were new.
	PutCards(deck string, cards []domain.Card) (int, error)
	// DeleteCards removes cards from deck. Their study records are kept.
	DeleteCards(deck string, ids []string) error
	// Cards lists the cards of deck in the order they were imported.
	Cards(deck string) ([]domain.Card, error)
	Decks() ([]string, error)

	AppendReviewLog(deck string, log domain.ReviewLog) error
	// ReviewLogs lists the reviews of one card, oldest first.
	ReviewLogs(deck, cardID string) ([]domain.ReviewLog, error)

	Close() error
}

const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// Open opens the store for driver at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(path)
	case DriverBolt:
		return OpenBolt(path)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedDriver, driver)
	}
}
