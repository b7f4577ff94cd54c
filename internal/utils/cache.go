package utils

import (
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds each FileReader cache
const DefaultCacheSize = 512

// CacheItem is a cached value plus the file metadata it was read under
type CacheItem[T any] struct {
	Value   T
	ModTime time.Time
	Size    int64
}

// Cache is a bounded LRU cache whose entries can be invalidated when the
// file they were derived from changes on disk. It is safe for concurrent use.
type Cache[K comparable, V any] struct {
	items *lru.Cache[K, *CacheItem[V]]
}

// NewCache creates a cache holding at most size entries; size <= 0 means DefaultCacheSize
func NewCache[K comparable, V any](size int) *Cache[K, V] {
	if size <= 0 {
		size = DefaultCacheSize
	}
	items, err := lru.New[K, *CacheItem[V]](size)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &Cache[K, V]{items: items}
}

// Get retrieves an item without checking the file
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if item, ok := c.items.Get(key); ok {
		return item.Value, true
	}
	var zero V
	return zero, false
}

// GetWithFileValidation retrieves an item if filePath still has the
// modification time and size recorded when it was cached. Stale entries are
// evicted.
func (c *Cache[K, V]) GetWithFileValidation(key K, filePath string) (V, bool) {
	var zero V
	item, ok := c.items.Get(key)
	if !ok {
		return zero, false
	}

	if stat, err := os.Stat(filePath); err == nil {
		if stat.ModTime().Equal(item.ModTime) && stat.Size() == item.Size {
			return item.Value, true
		}
	}
	c.items.Remove(key)
	return zero, false
}

// Set stores an item with no file metadata
func (c *Cache[K, V]) Set(key K, value V) {
	c.items.Add(key, &CacheItem[V]{Value: value})
}

// SetWithFileInfo stores an item along with filePath's current metadata
func (c *Cache[K, V]) SetWithFileInfo(key K, value V, filePath string) error {
	stat, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	c.items.Add(key, &CacheItem[V]{Value: value, ModTime: stat.ModTime(), Size: stat.Size()})
	return nil
}

// Delete removes an item
func (c *Cache[K, V]) Delete(key K) {
	c.items.Remove(key)
}

// Clear removes all items
func (c *Cache[K, V]) Clear() {
	c.items.Purge()
}

// Size returns the number of cached items
func (c *Cache[K, V]) Size() int {
	return c.items.Len()
}

// Keys returns the cached keys from oldest to newest
func (c *Cache[K, V]) Keys() []K {
	return c.items.Keys()
}
