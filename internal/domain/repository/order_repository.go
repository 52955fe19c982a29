package repository

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// OrderFilter criterios de listado de órdenes.
type OrderFilter struct {
	Search    string // subcadena del invoice id, sin distinguir mayúsculas
	CashierID string // vacío = todas
	Limit     int
	Offset    int
}

// OrderRepository define el puerto de persistencia para Order.
// GetByID y GetForUpdate devuelven (nil, nil) si la orden no existe.
type OrderRepository interface {
	// Create inserta la orden con sus ítems. Si el invoice id choca con otro existente,
	// la orden se guarda sin él y invoiceAssigned es false.
	Create(ctx context.Context, order *entity.Order) (invoiceAssigned bool, err error)
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// Update escribe estado, ítems y metadatos. Nunca modifica el invoice id.
	Update(ctx context.Context, order *entity.Order) error
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, int, error)
	// ListMissingInvoice órdenes sin invoice id, las más antiguas primero.
	ListMissingInvoice(ctx context.Context, limit, offset int) ([]*entity.Order, error)
	// AssignInvoiceID asigna el id solo si la orden aún no tiene uno.
	// Devuelve false si ya tenía id o si el valor choca con otra orden.
	AssignInvoiceID(ctx context.Context, orderID, invoiceID string) (bool, error)
}
