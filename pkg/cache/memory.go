package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/XiaoConstantine/lexgo/pkg/core"
)

// MemoryStore implements an in-memory cache with LRU eviction.
//
// Expired entries are dropped lazily on access; there is no background
// sweeper. CleanupExpired is available for callers that want to reclaim
// memory between requests.
type MemoryStore struct {
	config  Config
	clock   core.Clock
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	lruList *lruList
	stats   CacheStats
}

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
	createdAt time.Time
	element   *lruElement
}

// LRU list implementation.
type lruElement struct {
	key  string
	prev *lruElement
	next *lruElement
}

type lruList struct {
	head *lruElement
	tail *lruElement
	size int
}

func newLRUList() *lruList {
	head := &lruElement{}
	tail := &lruElement{}
	head.next = tail
	tail.prev = head
	return &lruList{head: head, tail: tail}
}

func (l *lruList) moveToFront(elem *lruElement) {
	if elem.prev == l.head {
		return // Already at front
	}
	// Remove from current position
	elem.prev.next = elem.next
	elem.next.prev = elem.prev
	// Insert at front
	elem.prev = l.head
	elem.next = l.head.next
	l.head.next.prev = elem
	l.head.next = elem
}

func (l *lruList) pushFront(key string) *lruElement {
	elem := &lruElement{key: key}
	elem.prev = l.head
	elem.next = l.head.next
	l.head.next.prev = elem
	l.head.next = elem
	l.size++
	return elem
}

func (l *lruList) removeElement(elem *lruElement) {
	elem.prev.next = elem.next
	elem.next.prev = elem.prev
	l.size--
}

func (l *lruList) back() *lruElement {
	if l.tail.prev == l.head {
		return nil
	}
	return l.tail.prev
}

// NewMemoryStore creates a new in-memory cache.
func NewMemoryStore(config Config) (*MemoryStore, error) {
	clock := config.Clock
	if clock == nil {
		clock = core.SystemClock
	}
	return &MemoryStore{
		config:  config,
		clock:   clock,
		entries: make(map[string]*memoryEntry),
		lruList: newLRUList(),
		stats: CacheStats{
			MaxEntries: int64(config.MaxEntries),
		},
	}, nil
}

func (c *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		atomic.AddInt64(&c.stats.Misses, 1)
		return nil, false, nil
	}

	// Expired entries are removed on access rather than by a sweeper
	now := c.clock.Now()
	if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
		delete(c.entries, key)
		c.lruList.removeElement(entry.element)
		atomic.AddInt64(&c.stats.Misses, 1)
		return nil, false, nil
	}

	// Move to front of LRU list
	c.lruList.moveToFront(entry.element)

	atomic.AddInt64(&c.stats.Hits, 1)
	c.stats.LastAccess = now // Safe: protected by c.mu.Lock

	return entry.value, true, nil
}

func (c *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := c.clock.Now()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	} else if c.config.TTL > 0 {
		expiresAt = now.Add(c.config.TTL)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if key already exists
	if existing, exists := c.entries[key]; exists {
		// Update existing entry
		existing.value = value
		existing.expiresAt = expiresAt
		c.lruList.moveToFront(existing.element)
	} else {
		// Evict entries if necessary
		if c.config.MaxEntries > 0 && len(c.entries) >= c.config.MaxEntries {
			c.evictLRU(len(c.entries) - c.config.MaxEntries + 1)
		}

		// Add new entry
		element := c.lruList.pushFront(key)
		c.entries[key] = &memoryEntry{
			key:       key,
			value:     value,
			expiresAt: expiresAt,
			createdAt: now,
			element:   element,
		}
	}

	atomic.AddInt64(&c.stats.Sets, 1)
	c.stats.LastAccess = now // Safe: protected by c.mu.Lock

	return nil
}

func (c *MemoryStore) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.entries[key]; exists {
		delete(c.entries, key)
		c.lruList.removeElement(entry.element)
		atomic.AddInt64(&c.stats.Deletes, 1)
	}

	return nil
}

func (c *MemoryStore) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*memoryEntry)
	c.lruList = newLRUList()

	// Reset stats
	atomic.StoreInt64(&c.stats.Hits, 0)
	atomic.StoreInt64(&c.stats.Misses, 0)
	atomic.StoreInt64(&c.stats.Sets, 0)
	atomic.StoreInt64(&c.stats.Deletes, 0)

	return nil
}

func (c *MemoryStore) Stats() CacheStats {
	c.mu.RLock()
	lastAccess := c.stats.LastAccess
	entries := int64(len(c.entries))
	c.mu.RUnlock()

	return CacheStats{
		Hits:       atomic.LoadInt64(&c.stats.Hits),
		Misses:     atomic.LoadInt64(&c.stats.Misses),
		Sets:       atomic.LoadInt64(&c.stats.Sets),
		Deletes:    atomic.LoadInt64(&c.stats.Deletes),
		Entries:    entries,
		MaxEntries: int64(c.config.MaxEntries),
		LastAccess: lastAccess,
	}
}

func (c *MemoryStore) Close() error {
	return nil
}

// CleanupExpired removes all entries that have expired by now and returns
// how many were dropped.
func (c *MemoryStore) CleanupExpired(ctx context.Context) (int, error) {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	var keysToDelete []string
	for key, entry := range c.entries {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			keysToDelete = append(keysToDelete, key)
		}
	}

	for _, key := range keysToDelete {
		if entry, exists := c.entries[key]; exists {
			delete(c.entries, key)
			c.lruList.removeElement(entry.element)
		}
	}

	return len(keysToDelete), nil
}

// evictLRU drops n entries from the back of the LRU list.
func (c *MemoryStore) evictLRU(n int) {
	for i := 0; i < n; i++ {
		elem := c.lruList.back()
		if elem == nil {
			break
		}

		if entry, exists := c.entries[elem.key]; exists {
			delete(c.entries, elem.key)
			c.lruList.removeElement(entry.element)
		} else {
			c.lruList.removeElement(elem)
		}
	}
}
