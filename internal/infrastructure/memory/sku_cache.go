package memory

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	id      string
	expires time.Time
}

// SKUCache caché local de resolución clave de búsqueda -> id de SKU canónico.
type SKUCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewSKUCache crea la caché. ttl <= 0 no expira.
func NewSKUCache(ttl time.Duration) *SKUCache {
	return &SKUCache{ttl: ttl, entries: map[string]cacheEntry{}, now: time.Now}
}

func (c *SKUCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && !c.now().Before(e.expires)) {
		return "", false, nil
	}
	return e.id, true, nil
}

func (c *SKUCache) Set(_ context.Context, key, id string) error {
	e := cacheEntry{id: id}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *SKUCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.mu.Unlock()
	return nil
}
