// Package cache provides the in-process queue cache: a string-keyed TTL store
// with stale-while-revalidate reads fronting the due-item query path.
package cache

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Clock supplies the current instant. Inject a fake in tests to exercise
// staleness and expiry without real delays.
type Clock func() time.Time

// Loader produces a fresh value for a key. It is called synchronously on a
// miss and in a detached goroutine during background revalidation.
type Loader func(ctx context.Context) (any, error)

type entry struct {
	value     any
	staleAt   time.Time
	expiresAt time.Time
}

// Cache is safe for concurrent use. Entries past their expiry are treated
// as absent; entries past their stale point are served immediately while a
// single background refresh runs.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry

	// refreshing tracks keys with an in-flight background refresh so a
	// burst of stale reads triggers one revalidation, not many.
	refreshMu  sync.Mutex
	refreshing map[string]time.Time

	sf             singleflight.Group
	clock          Clock
	logger         *log.Logger
	refreshTimeout time.Duration
}

// New creates an empty cache. A nil clock means time.Now; a nil logger
// means the standard logger.
func New(clock Clock, logger *log.Logger) *Cache {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{
		entries:        make(map[string]*entry),
		refreshing:     make(map[string]time.Time),
		clock:          clock,
		logger:         logger,
		refreshTimeout: 10 * time.Second,
	}
}

// Get returns the cached value for key. Expired entries are purged and
// reported as absent; stale-but-live entries are still returned.
func (c *Cache) Get(key string) (any, bool) {
	now := c.clock()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !now.Before(e.expiresAt) {
		c.mu.Lock()
		// Recheck under the write lock; a Set may have replaced the entry.
		if cur, ok := c.entries[key]; ok && cur == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the given TTL. The stale point is set at
// half the TTL, so staleAt < expiresAt always holds.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	now := c.clock()
	c.mu.Lock()
	c.entries[key] = &entry{
		value:     value,
		staleAt:   now.Add(ttl / 2),
		expiresAt: now.Add(ttl),
	}
	c.mu.Unlock()
}

// GetOrLoad serves key from the cache, loading through loader as needed:
// fresh entries return immediately; stale-but-live entries return immediately
// and kick off a detached background refresh; absent or expired entries load
// synchronously (deduplicated across concurrent callers) and are stored
// before returning. Synchronous loader errors propagate and nothing is
// cached; background refresh errors are swallowed and the stale value stays.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader Loader) (any, error) {
	now := c.clock()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && now.Before(e.expiresAt) {
		if !now.Before(e.staleAt) && c.tryMarkRefresh(key, now) {
			go c.revalidate(key, ttl, loader)
		}
		return e.value, nil
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		// A concurrent load may have filled the entry while we waited.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v, ttl)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Invalidate removes key unconditionally.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidatePrefix removes every key with the given prefix. The write path
// uses this to drop all limit variants of a user's queue at once.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Sweep purges expired entries and returns how many were removed. Intended
// to run periodically so abandoned keys do not accumulate.
func (c *Cache) Sweep() int {
	now := c.clock()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of live entries, expired included until swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// tryMarkRefresh claims the background refresh slot for key. Stale marks
// from refreshes that never finished are reclaimed after a timeout.
func (c *Cache) tryMarkRefresh(key string, now time.Time) bool {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	if until, ok := c.refreshing[key]; ok && now.Before(until) {
		return false
	}
	c.refreshing[key] = now.Add(2 * c.refreshTimeout)
	return true
}

func (c *Cache) clearRefresh(key string) {
	c.refreshMu.Lock()
	delete(c.refreshing, key)
	c.refreshMu.Unlock()
}

// revalidate refreshes key in the background. It runs detached from the
// read that triggered it: the caller never waits on it, and a failure
// leaves the previous value in place.
func (c *Cache) revalidate(key string, ttl time.Duration, loader Loader) {
	defer c.clearRefresh(key)

	ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
	defer cancel()

	v, err := loader(ctx)
	if err != nil {
		c.logger.Printf("cache: background refresh for %q failed: %v", key, err)
		return
	}
	c.Set(key, v, ttl)
}
