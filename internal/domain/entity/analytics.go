package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodTotals agregados de órdenes completadas en un rango.
type PeriodTotals struct {
	Count     int
	Revenue   decimal.Decimal
	ItemsSold int
}

// DailyRevenue ingresos de órdenes completadas agrupados por día calendario.
type DailyRevenue struct {
	Day     time.Time // medianoche local del día
	Count   int
	Revenue decimal.Decimal
}

// TopSeller producto con más unidades vendidas en un rango.
type TopSeller struct {
	ProductID string
	Name      string
	TotalSold int
}
