// Package app arma los casos de uso sobre el almacenamiento configurado
// (memoria o PostgreSQL, con Redis opcional para caché e idempotencia).
package app

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-ledger/internal/application/analytics"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/orders"
	"github.com/jhoicas/pos-ledger/internal/application/receipt"
	"github.com/jhoicas/pos-ledger/internal/application/sku"
	"github.com/jhoicas/pos-ledger/internal/application/usecase"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/pos-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/pos-ledger/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/pos-ledger/internal/interfaces/http"
	"github.com/jhoicas/pos-ledger/pkg/config"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

// txRunner une los dos tipos de transacción que exponen ambos almacenes.
type txRunner interface {
	inventory.TxRunner
	inventory.CatalogTxRunner
}

// Backend casos de uso listos para montar en el router o en un job.
type Backend struct {
	Orders        *orders.UseCase
	Receipts      *receipt.UseCase
	SKUs          *sku.UseCase
	Products      *usecase.ProductUseCase
	Dashboard     *analytics.DashboardUseCase
	Replenishment *inventory.ReplenishmentUseCase
	HealthChecks  map[string]httpRouter.Pinger

	closers []func()
}

// Close libera conexiones en orden inverso de apertura.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// NewBackend conecta el almacenamiento según cfg.Store.Driver y construye los casos de uso.
func NewBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	b := &Backend{HealthChecks: map[string]httpRouter.Pinger{}}

	var (
		tx            txRunner
		productRepo   repository.ProductRepository
		orderRepo     repository.OrderRepository
		skuRepo       repository.SKURepository
		analyticsRepo repository.AnalyticsRepository
	)
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		b.HealthChecks["postgres"] = pool
		tx = postgres.NewTxRunner(pool)
		productRepo = postgres.NewProductRepository(pool)
		orderRepo = postgres.NewOrderRepository(pool)
		skuRepo = postgres.NewSKURepository(pool)
		analyticsRepo = postgres.NewAnalyticsRepository(pool)
	default:
		store := memory.NewStore()
		tx = store
		productRepo = memory.NewProductRepository(store)
		orderRepo = memory.NewOrderRepository(store)
		skuRepo = memory.NewSKURepository(store)
		analyticsRepo = memory.NewAnalyticsRepository(store)
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	}

	var (
		cache sku.Cache
		guard orders.IdempotencyGuard
	)
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, infraredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.HealthChecks["redis"] = httpRouter.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		cache = infraredis.NewSKUCache(client, cfg.Store.SKUCacheTTL)
		guard = infraredis.NewIdempotencyGuard(client, cfg.Store.IdempotencyTTL)
	} else {
		cache = memory.NewSKUCache(cfg.Store.SKUCacheTTL)
		guard = memory.NewIdempotencyGuard(cfg.Store.IdempotencyTTL)
	}

	ledger := inventory.NewStockLedger()
	b.Orders = orders.NewUseCase(tx, orderRepo, ledger, log, orders.WithIdempotencyGuard(guard))
	b.Receipts = receipt.NewUseCase(orderRepo, productRepo, infrapdf.NewReceiptGenerator(), cfg.App.StoreName)
	b.SKUs = sku.NewUseCase(tx, skuRepo, cache, log)
	b.Products = usecase.NewProductUseCase(tx, productRepo, skuRepo, ledger, log)
	b.Dashboard = analytics.NewDashboardUseCase(analyticsRepo, log)
	b.Replenishment = inventory.NewReplenishmentUseCase(productRepo, analyticsRepo)
	return b, nil
}
