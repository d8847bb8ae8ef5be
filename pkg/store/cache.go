// Package store provides the on-disk cache for fetched season data, so the
// viewer starts offline once detection series and positions have been
// downloaded.
package store

import (
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Cache is a badger-backed byte cache keyed by source URL. It is explicitly
// owned by whoever constructs it and cleared via Clear, never held as
// implicit global state.
type Cache struct {
	db *badger.DB
}

// Open opens (or creates) the cache at the given directory.
func Open(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	// Decrease logging verbosity
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached bytes for a key, or nil without error when absent.
func (c *Cache) Get(key string) ([]byte, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	return val, err
}

// Put stores bytes under a key with an optional TTL (0 keeps them forever).
func (c *Cache) Put(key string, val []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), val)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Clear drops every cached entry.
func (c *Cache) Clear() error {
	return c.db.DropAll()
}
