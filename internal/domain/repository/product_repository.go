package repository

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// ProductFilter criterios de listado de productos. Los eliminados nunca se listan.
type ProductFilter struct {
	Search    string             // coincidencia parcial en nombre, marca, código o número de parte
	Status    entity.StockStatus // vacío = todos
	NoVariant bool               // solo productos sin padre
	ParentID  string             // solo variantes de este padre
	Limit     int
	Offset    int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate obtiene el producto bloqueando la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update modifica solo los datos descriptivos (no cantidad ni estado).
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock escribe los campos de stock. Solo lo invoca el StockLedger.
	UpdateStock(ctx context.Context, id string, remaining, sold, threshold int, status entity.StockStatus) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	GetNames(ctx context.Context, ids []string) (map[string]string, error)
}
