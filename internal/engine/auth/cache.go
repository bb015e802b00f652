package auth

import (
	"sync"
	"sync/atomic"
	"time"
)

// ScopeCache stores resolved scopes keyed by credential fingerprint. The
// in-memory implementation below is the default; the interface leaves room
// for a shared cache without touching the verifier.
type ScopeCache interface {
	Get(fingerprint string) (Scope, bool)
	Set(fingerprint string, scope Scope, ttl time.Duration)
	Invalidate(fingerprint string)
}

type cacheEntry struct {
	scope     Scope
	expiresAt time.Time
}

// MemoryScopeCache is a process-local TTL cache. Entries for the same
// fingerprint always carry the same scope, so concurrent fills after a shared
// miss are redundant but safe; no locking beyond sync.Map is needed.
type MemoryScopeCache struct {
	store sync.Map // map[string]*cacheEntry
	size  atomic.Int64
	stop  chan struct{}
	once  sync.Once
}

func NewMemoryScopeCache(sweepInterval time.Duration) *MemoryScopeCache {
	c := &MemoryScopeCache{stop: make(chan struct{})}
	if sweepInterval > 0 {
		go c.sweepLoop(sweepInterval)
	}
	return c
}

func (c *MemoryScopeCache) Get(fingerprint string) (Scope, bool) {
	val, ok := c.store.Load(fingerprint)
	if !ok {
		return Scope{}, false
	}

	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.delete(fingerprint)
		return Scope{}, false
	}
	return entry.scope, true
}

func (c *MemoryScopeCache) Set(fingerprint string, scope Scope, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	entry := &cacheEntry{scope: scope, expiresAt: time.Now().Add(ttl)}
	if _, loaded := c.store.Swap(fingerprint, entry); !loaded {
		c.size.Add(1)
	}
}

// Invalidate removes the entry for a fingerprint. The key-revocation path
// calls this so a revoked credential stops being honored without waiting for
// the TTL.
func (c *MemoryScopeCache) Invalidate(fingerprint string) {
	c.delete(fingerprint)
}

// Len reports the number of live entries, for health reporting.
func (c *MemoryScopeCache) Len() int {
	return int(c.size.Load())
}

// Close stops the background sweeper.
func (c *MemoryScopeCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *MemoryScopeCache) delete(fingerprint string) {
	if _, loaded := c.store.LoadAndDelete(fingerprint); loaded {
		c.size.Add(-1)
	}
}

func (c *MemoryScopeCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.store.Range(func(key, value interface{}) bool {
				if now.After(value.(*cacheEntry).expiresAt) {
					c.delete(key.(string))
				}
				return true
			})
		}
	}
}
