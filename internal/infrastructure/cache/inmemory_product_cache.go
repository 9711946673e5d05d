package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// productEntry represents a cached product id with expiration
type productEntry struct {
	id        uuid.UUID
	expiresAt time.Time
}

// InMemoryProductCache caches GTIN to product-id mappings in process
// memory. Suitable for single-instance deployments and testing.
type InMemoryProductCache struct {
	mu        sync.RWMutex
	entries   map[string]productEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryProductCache creates a new in-memory product-id cache.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryProductCache(ttl time.Duration) *InMemoryProductCache {
	c := &InMemoryProductCache{
		entries:  make(map[string]productEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns the cached product id for a GTIN
func (c *InMemoryProductCache) Get(ctx context.Context, gtin string) (uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[gtin]
	if !exists {
		return uuid.Nil, false
	}

	if time.Now().After(e.expiresAt) {
		return uuid.Nil, false
	}

	return e.id, true
}

// Set stores the product id for a GTIN
func (c *InMemoryProductCache) Set(ctx context.Context, gtin string, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[gtin] = productEntry{
		id:        id,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (c *InMemoryProductCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryProductCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryProductCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for gtin, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, gtin)
		}
	}
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryProductCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
