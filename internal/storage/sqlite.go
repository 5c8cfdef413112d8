package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/chapterdeck/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// SQLiteStore is a Store backed by a single SQLite database file.
type SQLiteStore struct {
	conn *sqlx.DB
}

// OpenSQLite creates a new database connection and ensures the schema is up to date.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLiteStore{conn: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

type cardRow struct {
	ID       string `db:"id"`
	Question string `db:"question"`
	Answer   string `db:"answer"`
	Chapter  string `db:"chapter"`
	Source   string `db:"source"`
}

type recordRow struct {
	CardID             string       `db:"card_id"`
	LastReviewed       sql.NullTime `db:"last_reviewed"`
	NextReview         time.Time    `db:"next_review"`
	Ease               float64      `db:"ease"`
	Interval           int          `db:"interval_days"`
	ReviewCount        int          `db:"review_count"`
	ConsecutiveCorrect int          `db:"consecutive_correct"`
}

func (r recordRow) toRecord() domain.StudyRecord {
	rec := domain.StudyRecord{
		CardID:             r.CardID,
		NextReview:         r.NextReview,
		Ease:               r.Ease,
		Interval:           r.Interval,
		ReviewCount:        r.ReviewCount,
		ConsecutiveCorrect: r.ConsecutiveCorrect,
	}
	if r.LastReviewed.Valid {
		t := r.LastReviewed.Time
		rec.LastReviewed = &t
	}
	return rec
}

type logRow struct {
	ID         string    `db:"id"`
	CardID     string    `db:"card_id"`
	Rating     string    `db:"rating"`
	Quality    int       `db:"quality"`
	Interval   int       `db:"interval_days"`
	Ease       float64   `db:"ease"`
	ReviewedAt time.Time `db:"reviewed_at"`
}

// PutCards upserts cards in deck. A card's position is its index in cards.
func (s *SQLiteStore) PutCards(deck string, cards []domain.Card) (int, error) {
	tx, err := s.conn.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing []string
	if err := tx.Select(&existing, `SELECT id FROM cards WHERE deck = ?`, deck); err != nil {
		return 0, fmt.Errorf("failed to list cards of deck %s: %w", deck, err)
	}
	known := make(map[string]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	added := 0
	for i, card := range cards {
		_, err := tx.Exec(`
			INSERT INTO cards (deck, id, question, answer, chapter, source, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (deck, id) DO UPDATE SET
				question = excluded.question,
				answer = excluded.answer,
				chapter = excluded.chapter,
				source = excluded.source,
				position = excluded.position
		`, deck, card.ID, card.Question, card.Answer, card.Chapter, card.Source, i)
		if err != nil {
			return 0, fmt.Errorf("failed to insert card %s: %w", card.ID, err)
		}
		if !known[card.ID] {
			known[card.ID] = true
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit cards of deck %s: %w", deck, err)
	}
	return added, nil
}

// DeleteCards removes cards from deck by ID.
func (s *SQLiteStore) DeleteCards(deck string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM cards WHERE deck = ? AND id IN (?)`, deck, ids)
	if err != nil {
		return fmt.Errorf("failed to build delete for deck %s: %w", deck, err)
	}
	if _, err := s.conn.Exec(s.conn.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to delete cards from deck %s: %w", deck, err)
	}
	return nil
}

// Cards retrieves all cards of deck in import order.
func (s *SQLiteStore) Cards(deck string) ([]domain.Card, error) {
	var rows []cardRow
	err := s.conn.Select(&rows, `
		SELECT id, question, answer, chapter, source
		FROM cards WHERE deck = ?
		ORDER BY position, id
	`, deck)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards of deck %s: %w", deck, err)
	}

	cards := make([]domain.Card, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, domain.Card(r))
	}
	return cards, nil
}

// Decks lists every deck that has at least one card.
func (s *SQLiteStore) Decks() ([]string, error) {
	var decks []string
	if err := s.conn.Select(&decks, `SELECT DISTINCT deck FROM cards ORDER BY deck`); err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

// AppendReviewLog stores one review event.
func (s *SQLiteStore) AppendReviewLog(deck string, log domain.ReviewLog) error {
	_, err := s.conn.Exec(`
		INSERT INTO review_logs (id, deck, card_id, rating, quality, interval_days, ease, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, log.ID, deck, log.CardID, log.Rating, log.Quality, log.Interval, log.Ease, log.ReviewedAt)
	if err != nil {
		return fmt.Errorf("failed to insert review log for card %s: %w", log.CardID, err)
	}
	return nil
}

// ReviewLogs retrieves the review history of a card, oldest first.
func (s *SQLiteStore) ReviewLogs(deck, cardID string) ([]domain.ReviewLog, error) {
	var rows []logRow
	err := s.conn.Select(&rows, `
		SELECT id, card_id, rating, quality, interval_days, ease, reviewed_at
		FROM review_logs WHERE deck = ? AND card_id = ?
		ORDER BY rowid
	`, deck, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review logs for card %s: %w", cardID, err)
	}

	logs := make([]domain.ReviewLog, 0, len(rows))
	for _, r := range rows {
		logs = append(logs, domain.ReviewLog(r))
	}
	return logs, nil
}

// Records returns the study record repository of deck.
func (s *SQLiteStore) Records(deck string) Repository {
	return &sqliteRecords{conn: s.conn, deck: deck}
}

type sqliteRecords struct {
	conn *sqlx.DB
	deck string
}

const recordColumns = `card_id, last_reviewed, next_review, ease, interval_days, review_count, consecutive_correct`

// Get retrieves a card's study record, or nil if the card was never reviewed.
func (r *sqliteRecords) Get(cardID string) (*domain.StudyRecord, error) {
	var row recordRow
	err := r.conn.Get(&row, `SELECT `+recordColumns+` FROM study_records WHERE deck = ? AND card_id = ?`, r.deck, cardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Card not reviewed yet
		}
		return nil, fmt.Errorf("failed to find study record for card %s: %w", cardID, err)
	}
	rec := row.toRecord()
	return &rec, nil
}

// Set inserts or replaces a card's study record.
func (r *sqliteRecords) Set(cardID string, rec domain.StudyRecord) error {
	var last sql.NullTime
	if rec.LastReviewed != nil {
		last = sql.NullTime{Time: *rec.LastReviewed, Valid: true}
	}
	_, err := r.conn.Exec(`
		INSERT INTO study_records (deck, `+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (deck, card_id) DO UPDATE SET
			last_reviewed = excluded.last_reviewed,
			next_review = excluded.next_review,
			ease = excluded.ease,
			interval_days = excluded.interval_days,
			review_count = excluded.review_count,
			consecutive_correct = excluded.consecutive_correct
	`, r.deck, cardID, last, rec.NextReview, rec.Ease, rec.Interval, rec.ReviewCount, rec.ConsecutiveCorrect)
	if err != nil {
		return fmt.Errorf("failed to save study record for card %s: %w", cardID, err)
	}
	return nil
}

// GetAll retrieves every study record of the deck.
func (r *sqliteRecords) GetAll() (map[string]domain.StudyRecord, error) {
	var rows []recordRow
	if err := r.conn.Select(&rows, `SELECT `+recordColumns+` FROM study_records WHERE deck = ?`, r.deck); err != nil {
		return nil, fmt.Errorf("failed to get study records of deck %s: %w", r.deck, err)
	}

	records := make(map[string]domain.StudyRecord, len(rows))
	for _, row := range rows {
		records[row.CardID] = row.toRecord()
	}
	return records, nil
}
