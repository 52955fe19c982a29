package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de lectura sobre el último estado confirmado.
type AnalyticsRepo struct {
	b binding
}

// NewAnalyticsRepository construye el repositorio de analítica.
func NewAnalyticsRepository(s *Store) *AnalyticsRepo {
	return &AnalyticsRepo{b: binding{store: s}}
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// completedIn recorre las órdenes completadas creadas en [from, to).
func completedIn(st *state, from, to time.Time, fn func(o *entity.Order)) {
	for _, o := range st.orders {
		if o.Status == entity.OrderCompleted && inRange(o.CreatedAt, from, to) {
			fn(o)
		}
	}
}

func (r *AnalyticsRepo) PeriodTotals(ctx context.Context, from, to time.Time, cashierID string) (entity.PeriodTotals, error) {
	out := entity.PeriodTotals{Revenue: decimal.Zero}
	err := r.b.read(ctx, func(st *state) error {
		completedIn(st, from, to, func(o *entity.Order) {
			if cashierID != "" && o.CashierID != cashierID {
				return
			}
			out.Count++
			out.Revenue = out.Revenue.Add(o.Total)
			out.ItemsSold += o.ItemCount()
		})
		return nil
	})
	return out, err
}

func (r *AnalyticsRepo) DailyRevenue(ctx context.Context, from, to time.Time, loc *time.Location) ([]entity.DailyRevenue, error) {
	if loc == nil {
		loc = time.Local
	}
	byDay := map[time.Time]*entity.DailyRevenue{}
	err := r.b.read(ctx, func(st *state) error {
		completedIn(st, from, to, func(o *entity.Order) {
			t := o.CreatedAt.In(loc)
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
			row, ok := byDay[day]
			if !ok {
				row = &entity.DailyRevenue{Day: day, Revenue: decimal.Zero}
				byDay[day] = row
			}
			row.Count++
			row.Revenue = row.Revenue.Add(o.Total)
		})
		return nil
	})
	out := make([]entity.DailyRevenue, 0, len(byDay))
	for _, row := range byDay {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, err
}

func (r *AnalyticsRepo) TopSellers(ctx context.Context, from, to time.Time, limit int) ([]entity.TopSeller, error) {
	var out []entity.TopSeller
	err := r.b.read(ctx, func(st *state) error {
		sold := map[string]int{}
		completedIn(st, from, to, func(o *entity.Order) {
			for _, it := range o.Items {
				sold[it.ProductID] += it.Count
			}
		})
		for id, n := range sold {
			p, ok := st.products[id]
			if !ok {
				continue
			}
			out = append(out, entity.TopSeller{ProductID: id, Name: p.Name, TotalSold: n})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].TotalSold != out[j].TotalSold {
				return out[i].TotalSold > out[j].TotalSold
			}
			return out[i].ProductID < out[j].ProductID
		})
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

func (r *AnalyticsRepo) CountActiveProducts(ctx context.Context, from, to time.Time) (int, error) {
	return r.countProducts(ctx, from, to, func(p *entity.Product) bool {
		return p.QuantityRemaining > 0
	})
}

func (r *AnalyticsRepo) CountLowStockProducts(ctx context.Context, from, to time.Time) (int, error) {
	return r.countProducts(ctx, from, to, func(p *entity.Product) bool {
		return p.QuantityRemaining <= p.QuantityThreshold
	})
}

func (r *AnalyticsRepo) countProducts(ctx context.Context, from, to time.Time, match func(p *entity.Product) bool) (int, error) {
	n := 0
	err := r.b.read(ctx, func(st *state) error {
		for _, p := range st.products {
			if !p.IsDeleted && inRange(p.UpdatedAt, from, to) && match(p) {
				n++
			}
		}
		return nil
	})
	return n, err
}
