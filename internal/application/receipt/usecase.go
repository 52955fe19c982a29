// Package receipt genera el comprobante en PDF de una orden de venta.
package receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// Line línea del comprobante con el nombre y el precio vigente del producto.
type Line struct {
	ProductName string
	Count       int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// Data todo lo que el generador necesita para dibujar el comprobante.
type Data struct {
	StoreName   string
	Order       *entity.Order
	Lines       []Line
	Subtotal    decimal.Decimal // suma de las líneas a precio vigente
	GeneratedAt time.Time
}

// Generator puerto de generación del PDF (implementado con maroto en infraestructura).
type Generator interface {
	GenerateReceiptPDF(ctx context.Context, data Data) ([]byte, error)
}

// UseCase genera comprobantes de órdenes.
type UseCase struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	generator   Generator
	storeName   string
	now         func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	generator Generator,
	storeName string,
) *UseCase {
	return &UseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		generator:   generator,
		storeName:   storeName,
		now:         time.Now,
	}
}

// Receipt genera el PDF de la orden.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrOrderNotFound    si la orden no existe.
//   - domain.ErrInvalidInput     si la orden aún no tiene invoice id.
func (uc *UseCase) Receipt(ctx context.Context, orderID string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Cargar orden ───────────────────────────────────────────────────────
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: obtener orden: %w", err)
	}
	if order == nil {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	if order.InvoiceID == "" {
		return nil, "", fmt.Errorf("%w: la orden aún no tiene invoice id", domain.ErrInvalidInput)
	}

	// ── 2. Enriquecer líneas con nombre y precio del producto ────────────────
	lines := make([]Line, 0, len(order.Items))
	subtotal := decimal.Zero
	for _, it := range order.Items {
		line := Line{ProductName: "Producto " + it.ProductID, Count: it.Count, UnitPrice: decimal.Zero}
		if p, pErr := uc.productRepo.GetByID(ctx, it.ProductID); pErr == nil && p != nil {
			line.ProductName = p.Name
			line.UnitPrice = p.Price
		}
		line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(it.Count)))
		subtotal = subtotal.Add(line.Subtotal)
		lines = append(lines, line)
	}

	// ── 3. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateReceiptPDF(ctx, Data{
		StoreName:   uc.storeName,
		Order:       order,
		Lines:       lines,
		Subtotal:    subtotal,
		GeneratedAt: uc.now(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("recibo: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("recibo_%s.pdf", order.InvoiceID), nil
}
