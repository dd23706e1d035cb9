package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/seekerror/logw"
)

// Journal is an on-disk store of finished games, recorded when the protocol
// driver reports a result. It doubles as a position database for offline
// analysis of the engine's play.
type Journal struct {
	db *badger.DB
}

// GameRecord is one finished game: the starting position, the moves played in
// long algebraic notation, and the reported result.
type GameRecord struct {
	Start  string    `json:"start"`
	Moves  []string  `json:"moves"`
	Result string    `json:"result"`
	Played time.Time `json:"played"`
}

// OpenJournal opens (or creates) the journal store in the given directory.
func OpenJournal(ctx context.Context, dir string) (*Journal, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal at %v: %w", dir, err)
	}

	logw.Infof(ctx, "Opened game journal at %v", dir)
	return &Journal{db: db}, nil
}

// RecordGame appends the game to the store.
func (j *Journal) RecordGame(ctx context.Context, rec GameRecord) error {
	if rec.Played.IsZero() {
		rec.Played = time.Now()
	}

	val, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := []byte(fmt.Sprintf("game/%020d", rec.Played.UnixNano()))

	if err := j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	}); err != nil {
		return fmt.Errorf("failed to record game: %w", err)
	}

	logw.Infof(ctx, "Recorded game: %v moves, result %v", len(rec.Moves), rec.Result)
	return nil
}

// Games returns all recorded games, oldest first.
func (j *Journal) Games(ctx context.Context) ([]GameRecord, error) {
	var ret []GameRecord

	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("game/")

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec GameRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				ret = append(ret, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return ret, nil
}

// Close flushes and closes the store.
func (j *Journal) Close() error {
	return j.db.Close()
}
