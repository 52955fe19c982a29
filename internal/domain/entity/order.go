package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado del ciclo de vida de una orden de venta.
type OrderStatus string

const (
	OrderReserved  OrderStatus = "reserved"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
	OrderReturned  OrderStatus = "returned"
)

// Valid indica si el estado es uno de los cuatro conocidos.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderReserved, OrderCompleted, OrderCancelled, OrderReturned:
		return true
	}
	return false
}

// OrderItem línea de la orden: producto y cantidad (>= 1).
type OrderItem struct {
	ProductID string
	Count     int
}

// Order cabecera de una venta. La orden es dueña exclusiva de sus ítems.
type Order struct {
	ID         string
	InvoiceID  string // vacío mientras no se haya asignado
	Items      []OrderItem
	Status     OrderStatus
	Total      decimal.Decimal
	Discount   decimal.Decimal // fracción en [0,1]
	CashierID  string
	PartsmanID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone copia la orden sin compartir el slice de ítems.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = CopyItems(o.Items)
	return &c
}

// ItemCount suma de unidades de todas las líneas.
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Count
	}
	return n
}

// CopyItems devuelve una copia independiente de la lista de ítems.
func CopyItems(items []OrderItem) []OrderItem {
	if items == nil {
		return nil
	}
	out := make([]OrderItem, len(items))
	copy(out, items)
	return out
}
