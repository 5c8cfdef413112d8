package storage

import (
	"encoding/binary"
	"encoding/json"
	"sort"
	"time"

	"github.com/conorfennell/chapterdeck/internal/domain"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	cardsBucket   = []byte("cards")
	recordsBucket = []byte("records")
	logsBucket    = []byte("logs")
)

// BoltStore is a Store backed by a bbolt file with one top-level bucket per deck.
type BoltStore struct {
	db *bolt.DB
}

type boltCard struct {
	Position int         `json:"position"`
	Card     domain.Card `json:"card"`
}

// OpenBolt opens or creates the bbolt file at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open bolt db")
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// deckBucket returns the nested bucket name of deck, or nil if either is missing.
func deckBucket(tx *bolt.Tx, deck string, name []byte) *bolt.Bucket {
	b := tx.Bucket([]byte(deck))
	if b == nil {
		return nil
	}
	return b.Bucket(name)
}

func createDeckBucket(tx *bolt.Tx, deck string, name []byte) (*bolt.Bucket, error) {
	b, err := tx.CreateBucketIfNotExists([]byte(deck))
	if err != nil {
		return nil, errors.Wrapf(err, "create deck bucket %q", deck)
	}
	nested, err := b.CreateBucketIfNotExists(name)
	if err != nil {
		return nil, errors.Wrapf(err, "create bucket %q in deck %q", name, deck)
	}
	return nested, nil
}

func (s *BoltStore) PutCards(deck string, cards []domain.Card) (int, error) {
	added := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := createDeckBucket(tx, deck, cardsBucket)
		if err != nil {
			return err
		}
		for i, card := range cards {
			key := []byte(card.ID)
			if b.Get(key) == nil {
				added++
			}
			encoded, err := json.Marshal(boltCard{Position: i, Card: card})
			if err != nil {
				return errors.Wrapf(err, "encode card %q", card.ID)
			}
			if err := b.Put(key, encoded); err != nil {
				return errors.Wrapf(err, "put card %q", card.ID)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (s *BoltStore) DeleteCards(deck string, ids []string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := deckBucket(tx, deck, cardsBucket)
		if b == nil {
			return nil
		}
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return errors.Wrapf(err, "drop card %q from deck %q", id, deck)
			}
		}
		return nil
	})
}

func (s *BoltStore) Cards(deck string) ([]domain.Card, error) {
	var stored []boltCard
	err := s.db.View(func(tx *bolt.Tx) error {
		b := deckBucket(tx, deck, cardsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var c boltCard
			if err := json.Unmarshal(v, &c); err != nil {
				return errors.Wrapf(err, "decode card %q", k)
			}
			stored = append(stored, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// ForEach walks keys in byte order; the ID breaks position ties the same way.
	sort.SliceStable(stored, func(i, j int) bool {
		return stored[i].Position < stored[j].Position
	})
	cards := make([]domain.Card, 0, len(stored))
	for _, c := range stored {
		cards = append(cards, c.Card)
	}
	return cards, nil
}

func (s *BoltStore) Decks() ([]string, error) {
	var decks []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
			cards := b.Bucket(cardsBucket)
			if cards == nil {
				return nil
			}
			if k, _ := cards.Cursor().First(); k != nil {
				decks = append(decks, string(name))
			}
			return nil
		})
	})
	return decks, err
}

func (s *BoltStore) AppendReviewLog(deck string, log domain.ReviewLog) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := createDeckBucket(tx, deck, logsBucket)
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return errors.Wrap(err, "next log sequence")
		}
		encoded, err := json.Marshal(log)
		if err != nil {
			return errors.Wrapf(err, "encode review log for card %q", log.CardID)
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return errors.Wrapf(b.Put(key, encoded), "put review log for card %q", log.CardID)
	})
}

func (s *BoltStore) ReviewLogs(deck, cardID string) ([]domain.ReviewLog, error) {
	logs := []domain.ReviewLog{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := deckBucket(tx, deck, logsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var l domain.ReviewLog
			if err := json.Unmarshal(v, &l); err != nil {
				return errors.Wrap(err, "decode review log")
			}
			if l.CardID == cardID {
				logs = append(logs, l)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *BoltStore) Records(deck string) Repository {
	return &boltRecords{db: s.db, deck: deck}
}

type boltRecords struct {
	db   *bolt.DB
	deck string
}

func (r *boltRecords) Get(cardID string) (*domain.StudyRecord, error) {
	var rec *domain.StudyRecord
	err := r.db.View(func(tx *bolt.Tx) error {
		b := deckBucket(tx, r.deck, recordsBucket)
		if b == nil {
			return nil
		}
		encoded := b.Get([]byte(cardID))
		if len(encoded) == 0 {
			return nil
		}
		rec = &domain.StudyRecord{}
		return errors.Wrapf(json.Unmarshal(encoded, rec), "decode record %q", cardID)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *boltRecords) Set(cardID string, rec domain.StudyRecord) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b, err := createDeckBucket(tx, r.deck, recordsBucket)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrapf(err, "encode record %q", cardID)
		}
		return errors.Wrapf(b.Put([]byte(cardID), encoded), "put record %q", cardID)
	})
}

func (r *boltRecords) GetAll() (map[string]domain.StudyRecord, error) {
	records := map[string]domain.StudyRecord{}
	err := r.db.View(func(tx *bolt.Tx) error {
		b := deckBucket(tx, r.deck, recordsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var rec domain.StudyRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return errors.Wrapf(err, "decode record %q", k)
			}
			records[string(k)] = rec
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
