// Package storage provides Badger-backed implementations of the
// settlement engine's record store and asset ledger. A store opened
// without a data directory runs fully in memory, which is the normal
// mode for tests and short-lived dispatchers.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/cloudx-io/auctionsettle/settlement"
)

// BadgerStore persists settlement records in a badger key-value store.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens the record store under dataDir/records, creating
// the directory if needed. An empty dataDir opens an in-memory store.
func NewBadgerStore(dataDir string) (*BadgerStore, error) {
	db, err := openBadger(dataDir, "records")
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func openBadger(dataDir, name string) (*badger.DB, error) {
	if dataDir == "" {
		opts := badger.DefaultOptions("").
			WithInMemory(true).
			// The default INFO logging is a bit verbose
			WithLoggingLevel(badger.WARNING)
		return badger.Open(opts)
	}

	if _, err := os.Stat(dataDir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read data dir: %w", err)
		}
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	opts := badger.DefaultOptions(filepath.Join(dataDir, name)).
		WithLoggingLevel(badger.WARNING)
	return badger.Open(opts)
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Load returns the record at key, or settlement.ErrNotFound.
func (s *BadgerStore) Load(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("key %x: %w", key, settlement.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load key %x: %w", key, err)
	}
	return value, nil
}

// Store writes the record at key, overwriting any prior value.
func (s *BadgerStore) Store(key, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("failed to store key %x: %w", key, err)
	}
	return nil
}

// Create allocates the record at key, tagging the entry with its owner
// so record kinds are distinguishable on inspection. Fails with
// settlement.ErrAlreadyInitialized when the key exists.
func (s *BadgerStore) Create(key []byte, size uint64, ownerTag byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return settlement.ErrAlreadyInitialized
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		entry := badger.NewEntry(key, make([]byte, 0, size)).WithMeta(ownerTag)
		return txn.SetEntry(entry)
	})
	if err != nil {
		if errors.Is(err, settlement.ErrAlreadyInitialized) {
			return fmt.Errorf("key %x: %w", key, settlement.ErrAlreadyInitialized)
		}
		return fmt.Errorf("failed to create key %x: %w", key, err)
	}
	return nil
}

// Delete removes the record at key. Deleting an absent key is a no-op.
func (s *BadgerStore) Delete(key []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("failed to delete key %x: %w", key, err)
	}
	return nil
}

var _ settlement.Store = (*BadgerStore)(nil)
