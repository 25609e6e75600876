package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"finman/internal/core"
)

// ListCache caches one transaction list per browser session.
//
// The contract is refetch-on-mutation: any create, update or delete
// calls Invalidate, and the next read misses and refetches. Each key
// carries a version token so a slow fetch that started before an
// invalidation can never write its stale result back.
type ListCache struct {
	lru *LRUCache[[]core.Transaction]

	mu       sync.Mutex
	versions map[string]string
}

// NewListCache caches up to maxSessions lists for at most ttl.
func NewListCache(maxSessions int, ttl time.Duration) *ListCache {
	return &ListCache{
		lru:      NewLRUCache[[]core.Transaction](maxSessions, ttl),
		versions: make(map[string]string),
	}
}

// Get returns a copy of the cached list for key, if fresh.
func (c *ListCache) Get(key string) ([]core.Transaction, bool) {
	txs, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	return out, true
}

// Begin returns the version token to pass to Complete after fetching.
func (c *ListCache) Begin(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.versions[key]
	if !ok {
		v = uuid.NewString()
		c.versions[key] = v
	}
	return v
}

// Complete stores a fetched list if no invalidation happened since
// Begin. It reports whether the list was accepted.
func (c *ListCache) Complete(key, token string, txs []core.Transaction) bool {
	c.mu.Lock()
	current := c.versions[key]
	c.mu.Unlock()
	if current != token {
		return false
	}
	stored := make([]core.Transaction, len(txs))
	copy(stored, txs)
	c.lru.Set(key, stored)
	return true
}

// Invalidate drops the cached list for key and bumps its version, so
// in-flight fetches of the old list are discarded on arrival.
func (c *ListCache) Invalidate(key string) {
	c.mu.Lock()
	c.versions[key] = uuid.NewString()
	c.mu.Unlock()
	c.lru.Delete(key)
}

// CleanExpired drops expired lists and forgets version tokens for
// sessions no longer cached.
func (c *ListCache) CleanExpired() int {
	n := c.lru.CleanExpired()
	c.mu.Lock()
	for key := range c.versions {
		if _, ok := c.lru.Get(key); !ok {
			delete(c.versions, key)
		}
	}
	c.mu.Unlock()
	return n
}

// Size returns the number of cached session lists.
func (c *ListCache) Size() int {
	return c.lru.Size()
}
