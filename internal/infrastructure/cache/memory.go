package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/verdeai/backend/internal/domain"
)

const defaultCleanupInterval = 10 * time.Minute

// MemoryCacheConfig tunes the in-memory cache. Zero values mean unbounded
// size and the default cleanup interval.
type MemoryCacheConfig struct {
	MaxEntries      int
	CleanupInterval time.Duration
}

// cacheItem represents a single item in the cache with expiration
type cacheItem struct {
	key        string
	value      []byte
	expiration time.Time // zero means no expiry
}

func (i *cacheItem) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// MemoryCache is a thread-safe in-memory cache with TTL support and optional
// least-recently-used eviction once MaxEntries is reached.
type MemoryCache struct {
	data       map[string]*list.Element
	order      *list.List // front is most recently used
	maxEntries int
	mutex      sync.Mutex
	closed     bool

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryCache creates a new in-memory cache and starts its janitor.
// Call Close to stop it.
func NewMemoryCache(cfg MemoryCacheConfig) *MemoryCache {
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = defaultCleanupInterval
	}

	cache := &MemoryCache{
		data:       make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: cfg.MaxEntries,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	go cache.cleanupExpired(interval)

	return cache
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return nil, domain.ErrCacheUnavailable
	}

	elem, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	item := elem.Value.(*cacheItem)
	if item.expired(time.Now()) {
		c.removeElement(elem)
		return nil, domain.ErrCacheMiss
	}

	c.order.MoveToFront(elem)
	return cloneBytes(item.value), nil
}

// Set stores a value in the cache. A zero ttl keeps the entry until it is
// evicted or deleted.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return domain.ErrCacheUnavailable
	}

	var expiration time.Time
	if ttl > 0 {
		expiration = time.Now().Add(ttl)
	}

	if elem, exists := c.data[key]; exists {
		item := elem.Value.(*cacheItem)
		item.value = cloneBytes(value)
		item.expiration = expiration
		c.order.MoveToFront(elem)
		return nil
	}

	c.data[key] = c.order.PushFront(&cacheItem{
		key:        key,
		value:      cloneBytes(value),
		expiration: expiration,
	})

	if c.maxEntries > 0 {
		for c.order.Len() > c.maxEntries {
			c.removeElement(c.order.Back())
		}
	}

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if elem, exists := c.data[key]; exists {
		c.removeElement(elem)
	}
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return false, domain.ErrCacheUnavailable
	}

	elem, exists := c.data[key]
	if !exists {
		return false, nil
	}

	return !elem.Value.(*cacheItem).expired(time.Now()), nil
}

// Close stops the janitor and drops all entries. Further reads and writes
// return domain.ErrCacheUnavailable.
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done

		c.mutex.Lock()
		c.closed = true
		c.data = make(map[string]*list.Element)
		c.order.Init()
		c.mutex.Unlock()
	})
	return nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.purgeExpired()
		}
	}
}

func (c *MemoryCache) purgeExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for _, elem := range c.data {
		if elem.Value.(*cacheItem).expired(now) {
			c.removeElement(elem)
		}
	}
}

// removeElement must be called with the mutex held.
func (c *MemoryCache) removeElement(elem *list.Element) {
	item := c.order.Remove(elem).(*cacheItem)
	delete(c.data, item.key)
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]*list.Element)
	c.order.Init()
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
