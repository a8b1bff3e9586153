// Package store persists merged time entries in an embedded BadgerDB.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/fakeyudi/codeclock/internal/entry"
)

// EntryStore is the persisted key-value contract the tracker flushes into.
// A single MergeEntry write is assumed crash-safe; no transaction ever spans
// multiple entries.
type EntryStore interface {
	// MergeEntry adds e.Minutes into the entry stored under e's natural key,
	// creating it if absent. Both the delta and the merged total must stay
	// inside [0, entry.MaxDayMinutes]; violations fail with
	// entry.ErrOutOfRange and leave the stored value untouched.
	MergeEntry(e entry.TimeEntry) error

	// ListEntries returns entries whose date falls in [from, to], ordered by
	// date. Empty bounds are open ends.
	ListEntries(from, to string) ([]entry.TimeEntry, error)

	Close() error
}

// ErrClosed reports an operation on a store whose Close has already run.
var ErrClosed = errors.New("entry store is closed")

// entryPrefix namespaces time-entry keys inside the database.
const entryPrefix = "entry/"

// badgerStore is the BadgerDB-backed EntryStore.
type badgerStore struct {
	db *badger.DB
}

// Open opens (or creates) the entry database at dir.
func Open(dir string) (EntryStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open entry database: %w", err)
	}
	return &badgerStore{db: db}, nil
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}

// mapErr translates badger's closed-database error into the package
// sentinel so callers need not know the backing engine.
func mapErr(err error) error {
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return err
}

// entryKey builds the badger key for a natural key. Fields are joined with a
// NUL byte because branch names routinely contain '/'. The date comes first,
// so prefix iteration yields entries in date order.
func entryKey(k entry.Key) []byte {
	buf := make([]byte, 0, len(entryPrefix)+len(k.Date)+len(k.Project)+len(k.Branch)+len(k.Language)+3)
	buf = append(buf, entryPrefix...)
	buf = append(buf, k.Date...)
	buf = append(buf, 0)
	buf = append(buf, k.Project...)
	buf = append(buf, 0)
	buf = append(buf, k.Branch...)
	buf = append(buf, 0)
	buf = append(buf, k.Language...)
	return buf
}

// MergeEntry implements the additive merge described on EntryStore.
func (s *badgerStore) MergeEntry(e entry.TimeEntry) error {
	e = e.Normalized()
	if err := e.Validate(); err != nil {
		return err
	}

	key := entryKey(e.Key())
	err := s.db.Update(func(txn *badger.Txn) error {
		merged := e
		item, err := txn.Get(key)
		if err == nil {
			var existing entry.TimeEntry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err != nil {
				return fmt.Errorf("failed to unmarshal stored entry: %w", err)
			}
			merged.Minutes += existing.Minutes
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if merged.Minutes > entry.MaxDayMinutes {
			return fmt.Errorf("merge would store %.2f minutes on %s: %w",
				merged.Minutes, e.Date, entry.ErrOutOfRange)
		}

		data, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		return txn.Set(key, data)
	})
	return mapErr(err)
}

// ListEntries scans the entry prefix and filters by the date range.
func (s *badgerStore) ListEntries(from, to string) ([]entry.TimeEntry, error) {
	var entries []entry.TimeEntry

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var e entry.TimeEntry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return fmt.Errorf("failed to unmarshal entry %q: %w", item.Key(), err)
			}
			if from != "" && e.Date < from {
				continue
			}
			if to != "" && e.Date > to {
				continue
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return entries, nil
}
