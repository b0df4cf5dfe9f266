package utils

import (
	"os"
	"sync"
	"time"
)

// fileStamp identifies the version of a file a cached value was built from
type fileStamp struct {
	modTime time.Time
	size    int64
}

func stampOf(info os.FileInfo) fileStamp {
	return fileStamp{modTime: info.ModTime(), size: info.Size()}
}

func (s fileStamp) matches(other fileStamp) bool {
	return s.size == other.size && s.modTime.Equal(other.modTime)
}

type cacheEntry[V any] struct {
	value V
	stamp fileStamp
}

// Cache holds values derived from files and drops them once the file on
// disk changes. It is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mutex sync.RWMutex
	items map[K]cacheEntry[V]
}

// NewCache creates an empty cache
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{items: make(map[K]cacheEntry[V])}
}

// GetWithFileValidation returns the value cached for key if filePath still
// has the size and modification time it had when the value was stored.
// Stale entries are evicted.
func (c *Cache[K, V]) GetWithFileValidation(key K, filePath string) (V, bool) {
	c.mutex.RLock()
	entry, exists := c.items[key]
	c.mutex.RUnlock()

	var zero V
	if !exists {
		return zero, false
	}

	if info, err := os.Stat(filePath); err == nil && stampOf(info).matches(entry.stamp) {
		return entry.value, true
	}

	c.Delete(key)
	return zero, false
}

// SetWithFileInfo stores value together with the current stamp of filePath
func (c *Cache[K, V]) SetWithFileInfo(key K, value V, filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items[key] = cacheEntry[V]{value: value, stamp: stampOf(info)}
	return nil
}

// Delete removes an item from the cache
func (c *Cache[K, V]) Delete(key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache[K, V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = make(map[K]cacheEntry[V])
}

// Size returns the number of items in the cache
func (c *Cache[K, V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.items)
}
