package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura sobre órdenes completadas.
// Todos los rangos son semiabiertos [from, to).
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// PeriodTotals cantidad, ingresos y unidades vendidas del período.
// Usa COALESCE para devolver cero si no hay filas (período sin ventas).
func (r *AnalyticsRepo) PeriodTotals(ctx context.Context, from, to time.Time, cashierID string) (entity.PeriodTotals, error) {
	const query = `
	SELECT
	    COUNT(*)                                   AS order_count,
	    COALESCE(SUM(o.total), 0)                  AS revenue,
	    COALESCE(SUM(i.items), 0)                  AS items_sold
	FROM orders o
	LEFT JOIN LATERAL (
	    SELECT SUM(count) AS items FROM order_items WHERE order_id = o.id
	) i ON TRUE
	WHERE o.status = 'completed'
	  AND o.created_at >= $1 AND o.created_at < $2
	  AND ($3::text = '' OR o.cashier_id = $3::text)`

	out := entity.PeriodTotals{Revenue: decimal.Zero}
	var items int64
	if err := r.pool.QueryRow(ctx, query, from, to, cashierID).Scan(&out.Count, &out.Revenue, &items); err != nil {
		return entity.PeriodTotals{}, wrapErr("analytics.PeriodTotals", err)
	}
	out.ItemsSold = int(items)
	return out, nil
}

// DailyRevenue agrupa por día calendario en la zona horaria loc.
func (r *AnalyticsRepo) DailyRevenue(ctx context.Context, from, to time.Time, loc *time.Location) ([]entity.DailyRevenue, error) {
	if loc == nil {
		loc = time.Local
	}
	const query = `
	SELECT
	    to_char(o.created_at AT TIME ZONE $3, 'YYYY-MM-DD') AS day,
	    COUNT(*)                                             AS order_count,
	    COALESCE(SUM(o.total), 0)                            AS revenue
	FROM orders o
	WHERE o.status = 'completed'
	  AND o.created_at >= $1 AND o.created_at < $2
	GROUP BY day
	ORDER BY day`

	rows, err := r.pool.Query(ctx, query, from, to, loc.String())
	if err != nil {
		return nil, wrapErr("analytics.DailyRevenue", err)
	}
	defer rows.Close()

	var out []entity.DailyRevenue
	for rows.Next() {
		var (
			day string
			row entity.DailyRevenue
		)
		if err := rows.Scan(&day, &row.Count, &row.Revenue); err != nil {
			return nil, fmt.Errorf("analytics.DailyRevenue scan: %w", err)
		}
		row.Day, err = time.ParseInLocation("2006-01-02", day, loc)
		if err != nil {
			return nil, fmt.Errorf("analytics.DailyRevenue día %q: %w", day, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// TopSellers suma unidades por producto; los eliminados se incluyen porque la venta ocurrió.
func (r *AnalyticsRepo) TopSellers(ctx context.Context, from, to time.Time, limit int) ([]entity.TopSeller, error) {
	const query = `
	SELECT
	    p.id,
	    p.name,
	    SUM(i.count) AS total_sold
	FROM orders o
	JOIN order_items i ON i.order_id = o.id
	JOIN products    p ON p.id       = i.product_id
	WHERE o.status = 'completed'
	  AND o.created_at >= $1 AND o.created_at < $2
	GROUP BY p.id, p.name
	ORDER BY total_sold DESC, p.id
	LIMIT $3`

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, wrapErr("analytics.TopSellers", err)
	}
	defer rows.Close()

	var out []entity.TopSeller
	for rows.Next() {
		var (
			s    entity.TopSeller
			sold int64
		)
		if err := rows.Scan(&s.ProductID, &s.Name, &sold); err != nil {
			return nil, fmt.Errorf("analytics.TopSellers scan: %w", err)
		}
		s.TotalSold = int(sold)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *AnalyticsRepo) CountActiveProducts(ctx context.Context, from, to time.Time) (int, error) {
	return r.countProducts(ctx, "quantity_remaining > 0", from, to)
}

func (r *AnalyticsRepo) CountLowStockProducts(ctx context.Context, from, to time.Time) (int, error) {
	return r.countProducts(ctx, "quantity_remaining <= quantity_threshold", from, to)
}

func (r *AnalyticsRepo) countProducts(ctx context.Context, cond string, from, to time.Time) (int, error) {
	query := `
	SELECT COUNT(*) FROM products
	WHERE NOT is_deleted
	  AND updated_at >= $1 AND updated_at < $2
	  AND ` + cond

	var n int
	if err := r.pool.QueryRow(ctx, query, from, to).Scan(&n); err != nil {
		return 0, wrapErr("analytics.countProducts", err)
	}
	return n, nil
}
