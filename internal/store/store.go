package store

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	gamePrefix = "game:"
	keyStats   = "stats"
)

var ErrNotFound = errors.New("record not found")

// GameRecord is the archived form of a finished game.
type GameRecord struct {
	ID        string    `json:"id"`
	White     string    `json:"white"`
	Black     string    `json:"black"`
	Moves     []string  `json:"moves"` // algebraic notation, in play order
	Resolve   string    `json:"resolve"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
}

// Stats aggregates the archive.
type Stats struct {
	GamesArchived int `json:"gamesArchived"`
	Checkmates    int `json:"checkmates"`
	Stalemates    int `json:"stalemates"`
	Resignations  int `json:"resignations"`
	Draws         int `json:"draws"`
}

// Store wraps BadgerDB for persistent game archival.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the archive at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRecord archives a finished game and folds it into the stats.
func (s *Store) SaveRecord(rec GameRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	stats, err := s.GetStats()
	if err != nil {
		return err
	}
	stats.GamesArchived++
	switch rec.Resolve {
	case "checkmate":
		stats.Checkmates++
	case "stalemate":
		stats.Stalemates++
	case "white resigned", "black resigned":
		stats.Resignations++
	case "draw agreed":
		stats.Draws++
	}
	statsData, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(gamePrefix+rec.ID), data); err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), statsData)
	})
}

// GetRecord loads one archived game by ID.
func (s *Store) GetRecord(id string) (GameRecord, error) {
	var rec GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(gamePrefix + id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

// RecentRecords returns up to n archived games, most recently ended first.
func (s *Store) RecentRecords(n int) ([]GameRecord, error) {
	records := []GameRecord{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gamePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec GameRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].EndedAt.After(records[j].EndedAt)
	})
	if n > 0 && len(records) > n {
		records = records[:n]
	}
	return records, nil
}

// GetStats loads the aggregate stats, zero-valued when nothing is archived
// yet.
func (s *Store) GetStats() (Stats, error) {
	var stats Stats

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stats)
		})
	})
	return stats, err
}
