package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value   string
	expires time.Time
}

// sweepEvery bounds how often a write scans the map for expired entries.
const sweepEvery = time.Minute

type memoryCache struct {
	mu        sync.Mutex
	items     map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

// NewMemory returns a process-local Cache, used by single-instance setups
// without Redis.
func NewMemory() Cache {
	return &memoryCache{items: make(map[string]memoryEntry), now: time.Now}
}

// sweep drops expired entries that were never read again. Callers hold mu.
func (c *memoryCache) sweep() {
	now := c.now()
	if now.Sub(c.lastSweep) < sweepEvery {
		return
	}
	c.lastSweep = now
	for k, e := range c.items {
		if !e.expires.IsZero() && now.After(e.expires) {
			delete(c.items, k)
		}
	}
}

func (c *memoryCache) live(key string) (memoryEntry, bool) {
	e, ok := c.items[key]
	if !ok {
		return e, false
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		delete(c.items, key)
		return e, false
	}
	return e, true
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.live(key)
	return e.value, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweep()
	c.items[key] = c.entry(value, ttl)
	return nil
}

func (c *memoryCache) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweep()
	if _, ok := c.live(key); ok {
		return false, nil
	}
	c.items[key] = c.entry(value, ttl)
	return true, nil
}

func (c *memoryCache) entry(value string, ttl time.Duration) memoryEntry {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	return e
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *memoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	return nil
}
