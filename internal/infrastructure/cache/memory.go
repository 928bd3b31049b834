package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fridgechef/backend/internal/domain"
)

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

// cacheItem represents a single item in the cache with expiration.
// A zero Expiration never expires.
type cacheItem[V any] struct {
	Value      V
	Expiration time.Time
}

func (i cacheItem[V]) expired(now time.Time) bool {
	return !i.Expiration.IsZero() && !now.Before(i.Expiration)
}

// MemoryCache is a thread-safe in-memory cache with TTL support
type MemoryCache[V any] struct {
	data  map[string]cacheItem[V]
	mutex sync.RWMutex
	now   Clock
	stop  chan struct{}
	once  sync.Once
}

var _ domain.Cache[string] = (*MemoryCache[string])(nil)

// NewMemoryCache creates a new in-memory cache. A nil clock means time.Now.
func NewMemoryCache[V any](clock Clock) *MemoryCache[V] {
	if clock == nil {
		clock = time.Now
	}
	cache := &MemoryCache[V]{
		data: make(map[string]cacheItem[V]),
		now:  clock,
		stop: make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired entries every 10 minutes
	go cache.cleanupExpired(10 * time.Minute)

	return cache
}

// Get retrieves a value from the cache
func (c *MemoryCache[V]) Get(ctx context.Context, key string) (V, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var zero V
	item, exists := c.data[key]
	if !exists {
		return zero, domain.ErrCacheMiss
	}

	if item.expired(c.now()) {
		return zero, domain.ErrCacheMiss
	}

	return item.Value, nil
}

// Set stores a value in the cache with TTL. A non-positive TTL keeps the
// value for the lifetime of the process.
func (c *MemoryCache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var expiration time.Time
	if ttl > 0 {
		expiration = c.now().Add(ttl)
	}

	c.data[key] = cacheItem[V]{
		Value:      value,
		Expiration: expiration,
	}

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache[V]) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache[V]) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return false, nil
	}

	return !item.expired(c.now()), nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache[V]) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.purge()
		}
	}
}

func (c *MemoryCache[V]) purge() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	for key, item := range c.data {
		if item.expired(now) {
			delete(c.data, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (c *MemoryCache[V]) Close() {
	c.once.Do(func() { close(c.stop) })
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache[V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache[V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem[V])
}
