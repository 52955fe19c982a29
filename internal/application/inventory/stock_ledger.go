package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/pos-ledger/internal/domain/inventory"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// Delta ajuste de stock de un producto: negativo para una venta, positivo para
// reposición, cancelación o devolución.
type Delta struct {
	ProductID string
	Quantity  int
}

// SaleDeltas deltas negativos para descontar los ítems de una orden.
func SaleDeltas(items []entity.OrderItem) []Delta {
	out := make([]Delta, 0, len(items))
	for _, it := range items {
		out = append(out, Delta{ProductID: it.ProductID, Quantity: -it.Count})
	}
	return out
}

// ReversalDeltas deltas positivos que deshacen el efecto de SaleDeltas.
func ReversalDeltas(items []entity.OrderItem) []Delta {
	out := make([]Delta, 0, len(items))
	for _, it := range items {
		out = append(out, Delta{ProductID: it.ProductID, Quantity: it.Count})
	}
	return out
}

// Net suma los deltas por producto, descarta los netos en cero y ordena por ID.
// El orden fijo de bloqueo evita interbloqueos entre operaciones concurrentes.
func Net(deltas []Delta) []Delta {
	sum := make(map[string]int, len(deltas))
	for _, d := range deltas {
		sum[d.ProductID] += d.Quantity
	}
	out := make([]Delta, 0, len(sum))
	for id, q := range sum {
		if q != 0 {
			out = append(out, Delta{ProductID: id, Quantity: q})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// StockLedger único escritor de QuantityRemaining, QuantitySold y Status.
// No conoce órdenes: aplica deltas ya autorizados usando el repositorio de la
// transacción del llamador, de modo que comparte su Commit o Rollback.
type StockLedger struct{}

// NewStockLedger construye el ledger.
func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// Apply aplica los deltas netos. Bloquea cada fila (GetForUpdate), valida que la
// cantidad resultante no sea negativa y recalcula el estado con DeriveStatus.
//
// Retorna:
//   - domain.ErrProductNotFound si un producto no existe, o si está eliminado y el delta es de venta.
//   - *domain.InsufficientStockError si una venta deja el stock bajo cero.
//
// Las reposiciones sobre productos eliminados se omiten: el producto queda congelado.
// Ante cualquier error el llamador debe abortar la transacción completa.
func (l *StockLedger) Apply(ctx context.Context, productRepo repository.ProductRepository, deltas []Delta) ([]*entity.Product, error) {
	netted := Net(deltas)
	updated := make([]*entity.Product, 0, len(netted))
	for _, d := range netted {
		if d.ProductID == "" {
			return nil, fmt.Errorf("%w: producto sin id", domain.ErrInvalidInput)
		}
		p, err := productRepo.GetForUpdate(ctx, d.ProductID)
		if err != nil {
			return nil, fmt.Errorf("ledger: bloquear producto %s: %w", d.ProductID, err)
		}
		if p == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, d.ProductID)
		}
		if p.IsDeleted {
			if d.Quantity < 0 {
				return nil, fmt.Errorf("%w: %s está eliminado", domain.ErrProductNotFound, d.ProductID)
			}
			continue
		}

		remaining := p.QuantityRemaining + d.Quantity
		if remaining < 0 {
			return nil, &domain.InsufficientStockError{
				ProductID: p.ID,
				Requested: -d.Quantity,
				Available: p.QuantityRemaining,
			}
		}
		sold := p.QuantitySold - d.Quantity
		if sold < 0 {
			sold = 0
		}
		status := domaininv.DeriveStatus(remaining, p.QuantityThreshold)
		if err := productRepo.UpdateStock(ctx, p.ID, remaining, sold, p.QuantityThreshold, status); err != nil {
			return nil, fmt.Errorf("ledger: actualizar stock %s: %w", p.ID, err)
		}
		p.QuantityRemaining = remaining
		p.QuantitySold = sold
		p.Status = status
		updated = append(updated, p)
	}
	return updated, nil
}

// Reset fija cantidad y umbral de un producto (edición manual desde el catálogo).
// Nil en quantity o threshold conserva el valor actual.
func (l *StockLedger) Reset(ctx context.Context, productRepo repository.ProductRepository, productID string, quantity, threshold *int) (*entity.Product, error) {
	if (quantity != nil && *quantity < 0) || (threshold != nil && *threshold < 0) {
		return nil, fmt.Errorf("%w: cantidad y umbral deben ser >= 0", domain.ErrInvalidInput)
	}
	p, err := productRepo.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("ledger: bloquear producto %s: %w", productID, err)
	}
	if p == nil || p.IsDeleted {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	if quantity != nil {
		p.QuantityRemaining = *quantity
	}
	if threshold != nil {
		p.QuantityThreshold = *threshold
	}
	p.Status = domaininv.DeriveStatus(p.QuantityRemaining, p.QuantityThreshold)
	if err := productRepo.UpdateStock(ctx, p.ID, p.QuantityRemaining, p.QuantitySold, p.QuantityThreshold, p.Status); err != nil {
		return nil, fmt.Errorf("ledger: actualizar stock %s: %w", p.ID, err)
	}
	return p, nil
}
