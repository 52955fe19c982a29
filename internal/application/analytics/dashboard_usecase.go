// Package analytics contiene el agregador de reportes de ventas: rollups de solo
// lectura sobre órdenes completadas para el dashboard y las estadísticas de cajero.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

const topSellersLimit = 50 // productos por período en el widget de más vendidos

var hundred = decimal.NewFromInt(100)

// DashboardUseCase genera las estadísticas de ventas.
//
// Fuente de datos: AnalyticsRepository (consultas read-only). Una consulta que falla se
// registra y su métrica queda en cero: el reporte nunca aborta la petición.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	log           *logger.Logger
	now           func() time.Time
	loc           *time.Location
}

// Option configura el caso de uso.
type Option func(*DashboardUseCase)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *DashboardUseCase) { uc.now = now }
}

// WithLocation zona horaria de los cortes de día, semana y mes.
func WithLocation(loc *time.Location) Option {
	return func(uc *DashboardUseCase) { uc.loc = loc }
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, log *logger.Logger, opts ...Option) *DashboardUseCase {
	uc := &DashboardUseCase{
		analyticsRepo: analyticsRepo,
		log:           log.Component("analytics"),
		now:           time.Now,
		loc:           time.Local,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// result resultado de una consulta lanzada en paralelo.
type result[T any] struct {
	v   T
	err error
}

func async[T any](fn func() (T, error)) <-chan result[T] {
	ch := make(chan result[T], 1)
	go func() {
		v, err := fn()
		ch <- result[T]{v, err}
	}()
	return ch
}

// await espera el resultado; ante error lo registra y devuelve el valor cero.
func await[T any](log *logger.Logger, name string, ch <-chan result[T]) T {
	r := <-ch
	if r.err != nil {
		log.Warn().Err(r.err).Str("query", name).Msg("consulta de analítica degradada a cero")
		var zero T
		return zero
	}
	return r.v
}

// GetSalesStatistics resumen del mes en curso frente al anterior, series diaria,
// semanal y mensual y top de ventas del día, la semana y el mes.
//
// Todas las consultas se lanzan en paralelo.
func (uc *DashboardUseCase) GetSalesStatistics(ctx context.Context) (*dto.SalesStatisticsDTO, error) {
	now := uc.now().In(uc.loc)

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	week := startOfWeek(now)
	month := startOfMonth(now)
	nextMonth := month.AddDate(0, 1, 0)
	lastMonth := month.AddDate(0, -1, 0)

	past7Days := today.AddDate(0, 0, -6)
	past7Weeks := today.AddDate(0, 0, -7*6)
	past12Months := month.AddDate(0, -11, 0)
	seriesFrom := past12Months
	if past7Weeks.Before(seriesFrom) {
		seriesFrom = past7Weeks
	}

	// ── Goroutines para paralelizar las consultas ─────────────────────────────
	curTotals := async(func() (entity.PeriodTotals, error) {
		return uc.analyticsRepo.PeriodTotals(ctx, month, nextMonth, "")
	})
	lastTotals := async(func() (entity.PeriodTotals, error) {
		return uc.analyticsRepo.PeriodTotals(ctx, lastMonth, month, "")
	})
	curActive := async(func() (int, error) { return uc.analyticsRepo.CountActiveProducts(ctx, month, nextMonth) })
	lastActive := async(func() (int, error) { return uc.analyticsRepo.CountActiveProducts(ctx, lastMonth, month) })
	curLow := async(func() (int, error) { return uc.analyticsRepo.CountLowStockProducts(ctx, month, nextMonth) })
	lastLow := async(func() (int, error) { return uc.analyticsRepo.CountLowStockProducts(ctx, lastMonth, month) })
	daily := async(func() ([]entity.DailyRevenue, error) {
		return uc.analyticsRepo.DailyRevenue(ctx, seriesFrom, tomorrow, uc.loc)
	})
	topDay := async(func() ([]entity.TopSeller, error) {
		return uc.analyticsRepo.TopSellers(ctx, today, tomorrow, topSellersLimit)
	})
	topWeek := async(func() ([]entity.TopSeller, error) {
		return uc.analyticsRepo.TopSellers(ctx, week, tomorrow, topSellersLimit)
	})
	topMonth := async(func() ([]entity.TopSeller, error) {
		return uc.analyticsRepo.TopSellers(ctx, month, tomorrow, topSellersLimit)
	})

	cur := await(uc.log, "month_totals", curTotals)
	last := await(uc.log, "last_month_totals", lastTotals)
	active := await(uc.log, "active_products", curActive)
	activeLast := await(uc.log, "last_month_active_products", lastActive)
	low := await(uc.log, "low_stock", curLow)
	lowLast := await(uc.log, "last_month_low_stock", lastLow)
	days := await(uc.log, "daily_revenue", daily)

	// ── Construir DTO ──────────────────────────────────────────────────────────
	return &dto.SalesStatisticsDTO{
		TotalSales:     cur.Count,
		TotalIncome:    zeroIfNil(cur.Revenue).Round(2),
		ActiveProducts: active,
		LowStock:       low,
		Trends: dto.SalesTrendsDTO{
			TotalSales:     Trend(decimal.NewFromInt(int64(cur.Count)), decimal.NewFromInt(int64(last.Count))),
			TotalIncome:    Trend(zeroIfNil(cur.Revenue), zeroIfNil(last.Revenue)),
			ActiveProducts: Trend(decimal.NewFromInt(int64(active)), decimal.NewFromInt(int64(activeLast))),
			LowStock:       Trend(decimal.NewFromInt(int64(low)), decimal.NewFromInt(int64(lowLast))),
		},
		DailySales:   dailySeries(days, past7Days),
		WeeklySales:  weeklySeries(days, today, past7Weeks),
		MonthlySales: monthlySeries(days, month),
		TopSelling: dto.TopSellersByPeriodDTO{
			Day:   toTopSellers(await(uc.log, "top_day", topDay)),
			Week:  toTopSellers(await(uc.log, "top_week", topWeek)),
			Month: toTopSellers(await(uc.log, "top_month", topMonth)),
		},
	}, nil
}

// GetPeriodStatistics agregados de un período. cashierID vacío incluye a todos.
func (uc *DashboardUseCase) GetPeriodStatistics(ctx context.Context, period Period, cashierID string) (*dto.PeriodStatsDTO, error) {
	from, to, err := Range(period, uc.now().In(uc.loc))
	if err != nil {
		return nil, err
	}
	totals, err := uc.analyticsRepo.PeriodTotals(ctx, from, to, cashierID)
	if err != nil {
		uc.log.Warn().Err(err).Str("period", string(period)).Msg("consulta de analítica degradada a cero")
		totals = entity.PeriodTotals{}
	}
	stats := periodStats(totals)
	return &stats, nil
}

// GetCashierStatistics los ocho períodos de un cajero más las variaciones de hoy
// frente a ayer y del mes frente al anterior.
func (uc *DashboardUseCase) GetCashierStatistics(ctx context.Context, cashierID string) (*dto.CashierStatisticsDTO, error) {
	if cashierID == "" {
		return nil, fmt.Errorf("%w: cajero requerido", domain.ErrInvalidInput)
	}
	now := uc.now().In(uc.loc)

	chans := make(map[Period]<-chan result[entity.PeriodTotals], len(AllPeriods))
	for _, p := range AllPeriods {
		from, to, err := Range(p, now)
		if err != nil {
			return nil, err
		}
		chans[p] = async(func() (entity.PeriodTotals, error) {
			return uc.analyticsRepo.PeriodTotals(ctx, from, to, cashierID)
		})
	}
	stats := make(map[Period]dto.PeriodStatsDTO, len(AllPeriods))
	for _, p := range AllPeriods {
		stats[p] = periodStats(await(uc.log, string(p), chans[p]))
	}

	return &dto.CashierStatisticsDTO{
		Today:                  stats[PeriodToday],
		Yesterday:              stats[PeriodYesterday],
		ThisWeek:               stats[PeriodThisWeek],
		LastWeek:               stats[PeriodLastWeek],
		ThisMonth:              stats[PeriodThisMonth],
		LastMonth:              stats[PeriodLastMonth],
		ThisYear:               stats[PeriodThisYear],
		LastYear:               stats[PeriodLastYear],
		ChangeTodayVsYesterday: stats[PeriodToday].Total.Sub(stats[PeriodYesterday].Total),
		ChangeMonthVsLast:      stats[PeriodThisMonth].Total.Sub(stats[PeriodLastMonth].Total),
	}, nil
}

// Trend variación porcentual de cur frente a last, redondeada a 2 decimales.
// Con last en cero devuelve 100.
func Trend(cur, last decimal.Decimal) decimal.Decimal {
	if last.IsZero() {
		return hundred
	}
	return cur.Sub(last).Div(last).Mul(hundred).Round(2)
}

func periodStats(t entity.PeriodTotals) dto.PeriodStatsDTO {
	revenue := zeroIfNil(t.Revenue)
	out := dto.PeriodStatsDTO{
		Total:                  revenue.Round(2),
		TransactionCount:       t.Count,
		ItemsSold:              t.ItemsSold,
		AvgTransactionValue:    decimal.Zero,
		AvgItemsPerTransaction: decimal.Zero,
	}
	if t.Count > 0 {
		n := decimal.NewFromInt(int64(t.Count))
		out.AvgTransactionValue = revenue.Div(n).Round(2)
		out.AvgItemsPerTransaction = decimal.NewFromInt(int64(t.ItemsSold)).Div(n).Round(2)
	}
	return out
}

// zeroIfNil un decimal.Decimal sin inicializar se comporta como cero, pero se
// normaliza para que la serialización sea estable.
func zeroIfNil(d decimal.Decimal) decimal.Decimal {
	return decimal.Zero.Add(d)
}

// dailySeries ingresos de los últimos 7 días agrupados por día de la semana (Sun..Sat).
func dailySeries(days []entity.DailyRevenue, from time.Time) []dto.SeriesPointDTO {
	byWeekday := make([]decimal.Decimal, 7)
	for i := range byWeekday {
		byWeekday[i] = decimal.Zero
	}
	for _, d := range days {
		if d.Day.Before(from) {
			continue
		}
		byWeekday[d.Day.Weekday()] = byWeekday[d.Day.Weekday()].Add(d.Revenue)
	}
	out := make([]dto.SeriesPointDTO, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		out = append(out, dto.SeriesPointDTO{Label: wd.String()[:3], Amount: byWeekday[wd].Round(2)})
	}
	return out
}

func isoWeekLabel(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%d-W%d", y, w)
}

// weeklySeries 7 semanas ISO terminando en la actual, etiquetas "YYYY-Wn".
func weeklySeries(days []entity.DailyRevenue, today, from time.Time) []dto.SeriesPointDTO {
	sums := map[string]decimal.Decimal{}
	for _, d := range days {
		if d.Day.Before(from) {
			continue
		}
		k := isoWeekLabel(d.Day)
		sums[k] = zeroIfNil(sums[k]).Add(d.Revenue)
	}
	out := make([]dto.SeriesPointDTO, 0, 7)
	for i := 6; i >= 0; i-- {
		k := isoWeekLabel(today.AddDate(0, 0, -7*i))
		out = append(out, dto.SeriesPointDTO{Label: k, Amount: zeroIfNil(sums[k]).Round(2)})
	}
	return out
}

// monthlySeries 12 meses terminando en el actual, etiquetas "YYYY-MM".
func monthlySeries(days []entity.DailyRevenue, month time.Time) []dto.SeriesPointDTO {
	sums := map[string]decimal.Decimal{}
	for _, d := range days {
		k := d.Day.Format("2006-01")
		sums[k] = zeroIfNil(sums[k]).Add(d.Revenue)
	}
	out := make([]dto.SeriesPointDTO, 0, 12)
	for i := 11; i >= 0; i-- {
		k := month.AddDate(0, -i, 0).Format("2006-01")
		out = append(out, dto.SeriesPointDTO{Label: k, Amount: zeroIfNil(sums[k]).Round(2)})
	}
	return out
}

func toTopSellers(rows []entity.TopSeller) []dto.TopSellerDTO {
	out := make([]dto.TopSellerDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopSellerDTO{ProductID: r.ProductID, Name: r.Name, TotalSold: r.TotalSold})
	}
	return out
}
