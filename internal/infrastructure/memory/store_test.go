package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
)

// ─── Reloj ───────────────────────────────────────────────────────────────────

func TestStore_SetClockConcurrenteConEscrituras(t *testing.T) {
	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	base := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	require.NoError(t, products.Create(context.Background(), &entity.Product{
		ID:                "p1",
		Name:              "Producto p1",
		Price:             decimal.NewFromInt(10),
		QuantityRemaining: 10,
		QuantityThreshold: 1,
		Status:            entity.StockAvailable,
		CreatedAt:         base,
		UpdatedAt:         base,
	}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			at := base.Add(time.Duration(i) * time.Minute)
			store.SetClock(func() time.Time { return at })
		}(i)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, products.UpdateStock(context.Background(), "p1", 10-i%5, i%5, 1, entity.StockAvailable))
		}(i)
	}
	wg.Wait()

	last := base.Add(time.Hour)
	store.SetClock(func() time.Time { return last })
	require.NoError(t, products.UpdateStock(context.Background(), "p1", 7, 3, 1, entity.StockAvailable))

	p, err := products.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, last, p.UpdatedAt)
	assert.Equal(t, 7, p.QuantityRemaining)
}
