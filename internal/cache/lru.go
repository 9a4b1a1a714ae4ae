package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// ContentCache memoizes minified content with LRU eviction and TTL. It is a
// process-local memo over the disk store: losing an entry only costs a disk
// existence check, never correctness.
type ContentCache struct {
	entries     map[string]*cacheEntry
	mutex       sync.RWMutex
	maxSize     int64
	currentSize int64
	ttl         time.Duration
	// LRU doubly-linked list with dummy head and tail
	head *cacheEntry
	tail *cacheEntry
	// Statistics tracking (atomic for thread safety)
	hits      int64
	misses    int64
	evictions int64
}

type cacheEntry struct {
	key        string
	value      []byte
	createdAt  time.Time
	accessedAt time.Time
	size       int64
	prev       *cacheEntry
	next       *cacheEntry
}

// NewContentCache creates a content cache bounded by maxSize bytes.
func NewContentCache(maxSize int64, ttl time.Duration) *ContentCache {
	cache := &ContentCache{
		entries: make(map[string]*cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}

	cache.head = &cacheEntry{}
	cache.tail = &cacheEntry{}
	cache.head.next = cache.tail
	cache.tail.prev = cache.head

	return cache
}

// Get retrieves a value from the cache
func (cc *ContentCache) Get(key string) ([]byte, bool) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	entry, exists := cc.entries[key]
	if !exists {
		atomic.AddInt64(&cc.misses, 1)
		return nil, false
	}

	// Check TTL
	if time.Since(entry.createdAt) > cc.ttl {
		cc.removeFromList(entry)
		delete(cc.entries, key)
		cc.currentSize -= entry.size
		atomic.AddInt64(&cc.misses, 1)
		return nil, false
	}

	cc.moveToFront(entry)
	entry.accessedAt = time.Now()
	atomic.AddInt64(&cc.hits, 1)
	return entry.value, true
}

// Set stores a value in the cache
func (cc *ContentCache) Set(key string, value []byte) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	if existing, exists := cc.entries[key]; exists {
		sizeDiff := int64(len(value)) - existing.size
		existing.value = value
		existing.createdAt = time.Now()
		existing.accessedAt = time.Now()
		existing.size = int64(len(value))
		cc.currentSize += sizeDiff
		cc.moveToFront(existing)
		return
	}

	cc.evictIfNeeded(int64(len(value)))

	entry := &cacheEntry{
		key:        key,
		value:      value,
		createdAt:  time.Now(),
		accessedAt: time.Now(),
		size:       int64(len(value)),
	}

	cc.entries[key] = entry
	cc.currentSize += entry.size
	cc.addToFront(entry)
}

// Invalidate drops a single entry, e.g. after its source file changed.
func (cc *ContentCache) Invalidate(key string) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	entry, exists := cc.entries[key]
	if !exists {
		return
	}

	cc.removeFromList(entry)
	delete(cc.entries, key)
	cc.currentSize -= entry.size
}

// evictIfNeeded evicts entries if the cache would exceed max size
func (cc *ContentCache) evictIfNeeded(newSize int64) {
	if cc.currentSize+newSize <= cc.maxSize {
		return
	}

	// Remove from tail (least recently used)
	for cc.currentSize+newSize > cc.maxSize && cc.tail.prev != cc.head {
		lru := cc.tail.prev
		cc.removeFromList(lru)
		delete(cc.entries, lru.key)
		cc.currentSize -= lru.size
		atomic.AddInt64(&cc.evictions, 1)
	}
}

// Stats returns entry count, current size, and max size
func (cc *ContentCache) Stats() (int, int64, int64) {
	cc.mutex.RLock()
	defer cc.mutex.RUnlock()

	return len(cc.entries), cc.currentSize, cc.maxSize
}

// HitRate returns the cache hit rate in [0, 1]
func (cc *ContentCache) HitRate() float64 {
	hits := atomic.LoadInt64(&cc.hits)
	misses := atomic.LoadInt64(&cc.misses)
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

// Evictions returns the number of cache evictions
func (cc *ContentCache) Evictions() int64 {
	return atomic.LoadInt64(&cc.evictions)
}

// LRU doubly-linked list operations
func (cc *ContentCache) addToFront(entry *cacheEntry) {
	entry.prev = cc.head
	entry.next = cc.head.next
	cc.head.next.prev = entry
	cc.head.next = entry
}

func (cc *ContentCache) removeFromList(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
}

func (cc *ContentCache) moveToFront(entry *cacheEntry) {
	cc.removeFromList(entry)
	cc.addToFront(entry)
}
