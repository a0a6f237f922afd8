// Package badgerstore persists snapshots in an embedded Badger database.
// It is the default backend: a single-user dashboard does not need a
// database server, just a durable local KV file.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"

	"github.com/fitpulse-lab/fitpulse/internal/store"
)

const (
	dataPrefix     = "snapshot:"
	revisionPrefix = "snapshot-rev:"
)

// Store implements store.SnapshotStore on top of Badger.
// The snapshot bytes and their revision live under separate keys but are
// always read and written inside one transaction, so the CAS guard holds.
type Store struct {
	db *badger.DB
}

// Open creates or opens the Badger database at dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0o750); err != nil {
		return nil, fmt.Errorf("create badger data directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Badger's own logger is too chatty; slog covers us.

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	slog.Info("[Badger] Snapshot store initialized", "dir", dir)
	return &Store{db: db}, nil
}

func (s *Store) Load(_ context.Context, key string) ([]byte, string, error) {
	var (
		data     []byte
		revision string
	)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(dataPrefix + key))
		if err != nil {
			return err
		}
		if data, err = item.ValueCopy(nil); err != nil {
			return err
		}

		revItem, err := txn.Get([]byte(revisionPrefix + key))
		if err != nil {
			return err
		}
		rev, err := revItem.ValueCopy(nil)
		if err != nil {
			return err
		}
		revision = string(rev)
		return nil
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, "", store.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load snapshot: %w", err)
	}
	return data, revision, nil
}

func (s *Store) Save(_ context.Context, key string, data []byte, expectedRevision string) (string, error) {
	revision := uuid.NewString()

	err := s.db.Update(func(txn *badger.Txn) error {
		current := ""
		item, err := txn.Get([]byte(revisionPrefix + key))
		switch {
		case err == nil:
			rev, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			current = string(rev)
		case errors.Is(err, badger.ErrKeyNotFound):
			// First write for this key.
		default:
			return err
		}

		if current != expectedRevision {
			return store.ErrRevisionMismatch
		}

		if err := txn.Set([]byte(dataPrefix+key), data); err != nil {
			return err
		}
		return txn.Set([]byte(revisionPrefix+key), []byte(revision))
	})

	if errors.Is(err, store.ErrRevisionMismatch) {
		return "", store.ErrRevisionMismatch
	}
	if err != nil {
		return "", fmt.Errorf("failed to save snapshot: %w", err)
	}

	slog.Debug("[Badger] Saved snapshot", "key", key, "revision", revision, "bytes", len(data))
	return revision, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(dataPrefix + key)); err != nil {
			return err
		}
		return txn.Delete([]byte(revisionPrefix + key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("badger database is closed")
	}
	return nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
