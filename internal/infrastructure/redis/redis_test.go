package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	posredis "github.com/jhoicas/pos-ledger/internal/infrastructure/redis"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := posredis.NewClient(context.Background(), posredis.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// ─── SKU cache ───────────────────────────────────────────────────────────────

func TestSKUCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	cache := posredis.NewSKUCache(client, time.Minute)

	_, found, err := cache.Get(ctx, "sku:A|B")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, "sku:A|B", "id-1"))
	id, found, err := cache.Get(ctx, "sku:A|B")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "id-1", id)
	assert.True(t, mr.Exists("pos:sku:A|B"))

	require.NoError(t, cache.Delete(ctx, "sku:A|B", "sku:otra"))
	_, found, err = cache.Get(ctx, "sku:A|B")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSKUCache_Expira(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	cache := posredis.NewSKUCache(client, time.Minute)

	require.NoError(t, cache.Set(ctx, "k", "v"))
	mr.FastForward(2 * time.Minute)

	_, found, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSKUCache_ServidorCaido(t *testing.T) {
	mr, client := setupRedis(t)
	cache := posredis.NewSKUCache(client, 0)
	mr.Close()

	_, _, err := cache.Get(context.Background(), "k")
	assert.Error(t, err)
}

// ─── Idempotency guard ───────────────────────────────────────────────────────

func TestIdempotencyGuard_Ciclo(t *testing.T) {
	ctx := context.Background()
	_, client := setupRedis(t)
	guard := posredis.NewIdempotencyGuard(client, time.Hour)

	existing, reserved, err := guard.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Empty(t, existing)

	// segunda petición mientras la primera sigue en curso
	existing, reserved, err = guard.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Empty(t, existing)

	require.NoError(t, guard.Complete(ctx, "k1", "order-9"))
	existing, reserved, err = guard.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "order-9", existing)
}

func TestIdempotencyGuard_ReleaseLiberaLaClave(t *testing.T) {
	ctx := context.Background()
	_, client := setupRedis(t)
	guard := posredis.NewIdempotencyGuard(client, time.Hour)

	_, reserved, err := guard.Reserve(ctx, "k2")
	require.NoError(t, err)
	require.True(t, reserved)
	require.NoError(t, guard.Release(ctx, "k2"))

	_, reserved, err = guard.Reserve(ctx, "k2")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestIdempotencyGuard_ExpiraConTTL(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	guard := posredis.NewIdempotencyGuard(client, time.Hour)

	require.NoError(t, guard.Complete(ctx, "k3", "order-1"))
	mr.FastForward(2 * time.Hour)

	_, reserved, err := guard.Reserve(ctx, "k3")
	require.NoError(t, err)
	assert.True(t, reserved)
}
