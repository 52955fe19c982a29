package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemDTO línea de una orden.
type OrderItemDTO struct {
	ProductID string `json:"product_id"`
	Count     int    `json:"count"`
}

// CreateOrderRequest body para POST /api/orders.
// Status: "reserved" o "completed" según el flujo del punto de venta.
type CreateOrderRequest struct {
	Items      []OrderItemDTO  `json:"items"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Discount   decimal.Decimal `json:"discount"` // fracción en [0,1]
	PartsmanID string          `json:"partsman_id,omitempty"`
}

// UpdateOrderRequest body para PUT /api/orders/:id.
// Los campos nil conservan el valor almacenado. Items solo se reemplazan cuando la
// orden pasa a completed con una lista distinta.
type UpdateOrderRequest struct {
	Status     string           `json:"status"`
	Items      []OrderItemDTO   `json:"items,omitempty"`
	Total      *decimal.Decimal `json:"total,omitempty"`
	Discount   *decimal.Decimal `json:"discount,omitempty"`
	PartsmanID *string          `json:"partsman_id,omitempty"`
}

// OrderResponse orden en respuestas.
type OrderResponse struct {
	ID         string          `json:"id"`
	InvoiceID  string          `json:"invoice_id,omitempty"`
	Items      []OrderItemDTO  `json:"items"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Discount   decimal.Decimal `json:"discount"`
	CashierID  string          `json:"cashier_id"`
	PartsmanID string          `json:"partsman_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// OrderListResponse lista paginada de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// BackfillResult resumen de la reparación de invoice ids.
type BackfillResult struct {
	Scanned  int `json:"scanned"`
	Assigned int `json:"assigned"`
	Skipped  int `json:"skipped"`
}
