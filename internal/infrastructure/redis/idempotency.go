package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	idempotencyPrefix = "pos:idem:"
	pendingMarker     = "__pending__"
)

// IdempotencyGuard claves de idempotencia de creación de órdenes compartidas entre réplicas.
// La reserva es un SETNX con marcador de "en curso"; al completar se guarda el id de la orden.
type IdempotencyGuard struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewIdempotencyGuard ttl <= 0 usa 24 horas.
func NewIdempotencyGuard(client *goredis.Client, ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyGuard{client: client, ttl: ttl}
}

// Reserve devuelve reserved=true si la clave es nueva. Si ya existe, existingOrderID es
// el id de la orden creada o vacío si la petición original sigue en curso.
func (g *IdempotencyGuard) Reserve(ctx context.Context, key string) (string, bool, error) {
	k := idempotencyPrefix + key
	ok, err := g.client.SetNX(ctx, k, pendingMarker, g.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}

	v, err := g.client.Get(ctx, k).Result()
	if errors.Is(err, goredis.Nil) {
		// expiró entre SETNX y GET
		return g.Reserve(ctx, key)
	}
	if err != nil {
		return "", false, err
	}
	if v == pendingMarker {
		return "", false, nil
	}
	return v, false, nil
}

func (g *IdempotencyGuard) Complete(ctx context.Context, key, orderID string) error {
	return g.client.Set(ctx, idempotencyPrefix+key, orderID, g.ttl).Err()
}

func (g *IdempotencyGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, idempotencyPrefix+key).Err()
}
