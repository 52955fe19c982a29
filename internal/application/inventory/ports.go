package inventory

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el ciclo de vida de las órdenes: si fn devuelve error no se
// persiste ningún cambio de stock ni de la orden.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// CatalogTxRunner transacción para gestión de catálogo (SKUs y productos).
type CatalogTxRunner interface {
	RunCatalog(ctx context.Context, fn func(
		skuRepo repository.SKURepository,
		productRepo repository.ProductRepository,
	) error) error
}
