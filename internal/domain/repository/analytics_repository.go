package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// AnalyticsRepository consultas de lectura sobre órdenes completadas.
// Las implementaciones son read-only. Rangos semiabiertos [from, to).
type AnalyticsRepository interface {
	// PeriodTotals cantidad, ingresos y unidades de las órdenes completadas.
	// cashierID vacío incluye a todos los cajeros.
	PeriodTotals(ctx context.Context, from, to time.Time, cashierID string) (entity.PeriodTotals, error)
	// DailyRevenue ingresos por día calendario (zona horaria de loc).
	DailyRevenue(ctx context.Context, from, to time.Time, loc *time.Location) ([]entity.DailyRevenue, error)
	// TopSellers productos con más unidades vendidas, de mayor a menor.
	TopSellers(ctx context.Context, from, to time.Time, limit int) ([]entity.TopSeller, error)
	// CountActiveProducts productos con stock > 0, no eliminados, actualizados en el rango.
	CountActiveProducts(ctx context.Context, from, to time.Time) (int, error)
	// CountLowStockProducts productos con stock <= umbral, no eliminados, actualizados en el rango.
	CountLowStockProducts(ctx context.Context, from, to time.Time) (int, error)
}
