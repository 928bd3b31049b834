package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/fridgechef/backend/internal/domain"
)

// BadgerCache stores JSON-encoded values in BadgerDB so that resolved images and
// recipe lookups survive restarts. Keys are namespaced by prefix so several typed
// caches can share one database.
type BadgerCache[V any] struct {
	db     *badger.DB
	prefix string
}

var _ domain.Cache[string] = (*BadgerCache[string])(nil)

// OpenBadger opens (or creates) a BadgerDB at path with badger's own logging disabled.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return db, nil
}

// NewBadgerCache creates a typed view over db using the given key prefix.
func NewBadgerCache[V any](db *badger.DB, prefix string) *BadgerCache[V] {
	return &BadgerCache[V]{db: db, prefix: prefix}
}

func (c *BadgerCache[V]) key(k string) []byte {
	return []byte(c.prefix + k)
}

// Get retrieves and decodes a value. Expired entries are dropped by badger itself.
func (c *BadgerCache[V]) Get(ctx context.Context, key string) (V, error) {
	var value V
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.ErrCacheMiss
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &value)
		})
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return value, nil
}

// Set encodes and stores a value. A non-positive TTL stores it without expiry.
func (c *BadgerCache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(c.key(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes a value.
func (c *BadgerCache[V]) Delete(ctx context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(c.key(key))
	})
}

// Exists checks if a non-expired key is present.
func (c *BadgerCache[V]) Exists(ctx context.Context, key string) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(c.key(key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
