package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// SKU vacío deja el producto sin SKU canónico.
type CreateProductRequest struct {
	Name              string          `json:"name"`
	Brand             string          `json:"brand"`
	Description       string          `json:"description"`
	Images            []string        `json:"images"`
	UniqueCode        string          `json:"unique_code"`
	PartNumber        string          `json:"part_number"`
	Price             decimal.Decimal `json:"price"`
	QuantityRemaining int             `json:"quantity_remaining"`
	QuantityThreshold *int            `json:"quantity_threshold"`
	SKU               string          `json:"sku"`
	Tags              []string        `json:"tags"`
	ParentID          string          `json:"parent_id"`
}

// UpdateProductRequest entrada para actualizar un producto.
// QuantityRemaining y QuantityThreshold pasan por el ledger de stock.
// SKU: nil conserva el actual, "" lo quita.
type UpdateProductRequest struct {
	Name              *string          `json:"name"`
	Brand             *string          `json:"brand"`
	Description       *string          `json:"description"`
	Images            []string         `json:"images"`
	UniqueCode        *string          `json:"unique_code"`
	PartNumber        *string          `json:"part_number"`
	Price             *decimal.Decimal `json:"price"`
	QuantityRemaining *int             `json:"quantity_remaining"`
	QuantityThreshold *int             `json:"quantity_threshold"`
	SKU               *string          `json:"sku"`
	Tags              []string         `json:"tags"`
	ParentID          *string          `json:"parent_id"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Brand             string            `json:"brand,omitempty"`
	Description       string            `json:"description,omitempty"`
	Images            []string          `json:"images"`
	UniqueCode        string            `json:"unique_code,omitempty"`
	PartNumber        string            `json:"part_number,omitempty"`
	Price             decimal.Decimal   `json:"price"`
	QuantityRemaining int               `json:"quantity_remaining"`
	QuantitySold      int               `json:"quantity_sold"`
	QuantityThreshold int               `json:"quantity_threshold"`
	Status            string            `json:"status"`
	SKUID             string            `json:"sku_id,omitempty"`
	SKU               string            `json:"sku,omitempty"`
	Tags              []string          `json:"tags"`
	ParentID          string            `json:"parent_id,omitempty"`
	Variants          []ProductResponse `json:"variants,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductListQuery filtros de GET /api/products.
type ProductListQuery struct {
	Search    string
	Status    string
	NoVariant bool
	Limit     int
	Offset    int
}
