package memory

import (
	"context"
	"sync"
	"time"
)

type idemEntry struct {
	orderID string // vacío mientras la petición está en curso
	expires time.Time
}

// IdempotencyGuard guardia de claves de idempotencia en proceso. Sirve para una sola
// instancia; con varias réplicas se usa la implementación sobre Redis.
type IdempotencyGuard struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]idemEntry
	now     func() time.Time
}

// NewIdempotencyGuard crea la guardia. ttl <= 0 usa 24 horas.
func NewIdempotencyGuard(ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyGuard{ttl: ttl, entries: map[string]idemEntry{}, now: time.Now}
}

func (g *IdempotencyGuard) Reserve(_ context.Context, key string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if e, ok := g.entries[key]; ok && now.Before(e.expires) {
		return e.orderID, false, nil
	}
	g.entries[key] = idemEntry{expires: now.Add(g.ttl)}
	return "", true, nil
}

func (g *IdempotencyGuard) Complete(_ context.Context, key, orderID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries[key] = idemEntry{orderID: orderID, expires: g.now().Add(g.ttl)}
	return nil
}

func (g *IdempotencyGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, key)
	return nil
}
