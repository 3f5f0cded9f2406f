package basemap

import (
	"fmt"
	"sync"
	"time"
)

// TileCache is a concurrent-safe LRU cache for basemap tiles with TTL
// expiration. Repeated renders of neighboring countries share tiles.
type TileCache struct {
	mu         sync.Mutex
	entries    map[string]*tileCacheEntry
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
}

type tileCacheEntry struct {
	data      []byte
	createdAt time.Time
}

// NewTileCache creates a new TileCache with the given capacity and TTL.
func NewTileCache(maxEntries int, ttl time.Duration) *TileCache {
	return &TileCache{
		entries:    make(map[string]*tileCacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// tileKey builds the cache key for a tile.
func tileKey(z, x, y int) string {
	return fmt.Sprintf("%d/%d/%d", z, x, y)
}

// Get retrieves a cached tile. Returns nil on miss or expiration.
func (c *TileCache) Get(z, x, y int) []byte {
	key := tileKey(z, x, y)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}

	if time.Since(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil
	}

	// Move to back (most recently used).
	c.removeFromOrder(key)
	c.order = append(c.order, key)
	return entry.data
}

// Put stores a tile in the cache, evicting the oldest entry if at capacity.
func (c *TileCache) Put(z, x, y int, data []byte) {
	key := tileKey(z, x, y)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = &tileCacheEntry{data: data, createdAt: time.Now()}
		c.removeFromOrder(key)
		c.order = append(c.order, key)
		return
	}

	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &tileCacheEntry{data: data, createdAt: time.Now()}
	c.order = append(c.order, key)
}

// removeFromOrder removes a key from the LRU order slice.
func (c *TileCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
