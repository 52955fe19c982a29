package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus etiqueta derivada de la cantidad disponible frente al umbral.
// Nunca se asigna a mano: la calcula inventory.DeriveStatus.
type StockStatus string

const (
	StockAvailable  StockStatus = "available"
	StockLow        StockStatus = "low_in_stock"
	StockOutOfStock StockStatus = "out_of_stock"
)

// Valid indica si el valor es uno de los estados conocidos.
func (s StockStatus) Valid() bool {
	switch s {
	case StockAvailable, StockLow, StockOutOfStock:
		return true
	}
	return false
}

// DefaultQuantityThreshold umbral de stock bajo cuando no se indica uno.
const DefaultQuantityThreshold = 1

// Product representa un producto vendible con su stock.
// QuantityRemaining, QuantitySold y Status solo los escribe el StockLedger.
type Product struct {
	ID                string
	Name              string
	Brand             string
	Description       string
	Images            []string
	UniqueCode        string
	PartNumber        string
	Price             decimal.Decimal
	QuantityRemaining int
	QuantitySold      int
	QuantityThreshold int
	Status            StockStatus
	CanonicalSKUID    *string
	Tags              []string
	ParentID          *string // agrupación plana de variantes (un solo nivel)
	IsDeleted         bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Clone copia el producto sin compartir slices ni punteros.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.Images = append([]string(nil), p.Images...)
	c.Tags = append([]string(nil), p.Tags...)
	c.CanonicalSKUID = cloneStringPtr(p.CanonicalSKUID)
	c.ParentID = cloneStringPtr(p.ParentID)
	return &c
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
