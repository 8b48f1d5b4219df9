/**
 * @description
 * In-process cache.Store implementation.
 * TTL- and capacity-bounded map with least-recently-used eviction and a bounded
 * lazy expiry sweep (no background timers).
 *
 * @dependencies
 * - standard "container/list", "sync", "time", "encoding/json"
 *
 * @notes
 * - The store is shared across request goroutines; all access is serialized
 *   behind one mutex. Two concurrent misses on the same key can both recompute
 *   and the later Set wins, which is accepted (recomputation is idempotent).
 * - Values are stored as marshaled JSON, so a hit can never mutate the cached
 *   aggregate in place; a hit only reorders recency.
 */

package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dexmark-project/backend/internal/logger"
)

const (
	// DefaultMaxEntries caps the number of live entries
	DefaultMaxEntries = 500
	// sweepLimit bounds how many expired entries one sweep may remove,
	// to avoid unbounded pauses on hot paths
	sweepLimit = 50
)

type memoryEntry struct {
	key       string
	payload   []byte
	etag      string
	expiresAt time.Time
}

// Memory is a mutex-guarded TTL+LRU cache.Store
type Memory struct {
	mu         sync.Mutex
	entries    map[string]*list.Element // values are *memoryEntry elements of lru
	lru        *list.List               // front = most recently used
	maxEntries int
	now        func() time.Time
}

// NewMemory creates an in-process store holding at most maxEntries entries.
// maxEntries <= 0 selects DefaultMaxEntries.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{
		entries:    make(map[string]*list.Element),
		lru:        list.New(),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get implements cache.Store
func (m *Memory) Get(_ context.Context, key string, dest interface{}) (string, bool) {
	m.mu.Lock()

	m.pruneExpired()

	elem, found := m.entries[key]
	if !found {
		m.mu.Unlock()
		return "", false
	}

	entry := elem.Value.(*memoryEntry)
	if !entry.expiresAt.After(m.now()) {
		m.removeElement(elem)
		m.mu.Unlock()
		return "", false
	}

	// LRU bump
	m.lru.MoveToFront(elem)
	payload, tag := entry.payload, entry.etag
	m.mu.Unlock()

	if err := json.Unmarshal(payload, dest); err != nil {
		logger.Error("cache: failed to decode entry for %s: %v", key, err)
		return "", false
	}
	return tag, true
}

// Set implements cache.Store
func (m *Memory) Set(_ context.Context, key string, value interface{}, ttl time.Duration, etag string) {
	payload, err := json.Marshal(value)
	if err != nil {
		logger.Error("cache: failed to encode entry for %s: %v", key, err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneExpired()

	expiresAt := m.now().Add(ttl)
	if elem, found := m.entries[key]; found {
		entry := elem.Value.(*memoryEntry)
		entry.payload = payload
		entry.etag = etag
		entry.expiresAt = expiresAt
		m.lru.MoveToFront(elem)
	} else {
		m.entries[key] = m.lru.PushFront(&memoryEntry{
			key:       key,
			payload:   payload,
			etag:      etag,
			expiresAt: expiresAt,
		})
	}

	m.ensureCapacity()
}

// Len reports the current number of entries (expired ones included until swept)
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

// pruneExpired removes up to sweepLimit expired entries. Callers hold mu.
func (m *Memory) pruneExpired() {
	now := m.now()
	removed := 0
	for elem := m.lru.Back(); elem != nil && removed < sweepLimit; {
		prev := elem.Prev()
		if !elem.Value.(*memoryEntry).expiresAt.After(now) {
			m.removeElement(elem)
			removed++
		}
		elem = prev
	}
}

// ensureCapacity evicts least-recently-used entries until size <= maxEntries.
// Callers hold mu.
func (m *Memory) ensureCapacity() {
	for m.lru.Len() > m.maxEntries {
		oldest := m.lru.Back()
		if oldest == nil {
			break
		}
		m.removeElement(oldest)
	}
}

func (m *Memory) removeElement(elem *list.Element) {
	m.lru.Remove(elem)
	delete(m.entries, elem.Value.(*memoryEntry).key)
}
