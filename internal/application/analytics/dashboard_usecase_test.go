package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/analytics"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

// miércoles 11 de marzo de 2026
var now = time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	store.SetClock(func() time.Time { return now })

	products := memory.NewProductRepository(store)
	require.NoError(t, products.Create(ctx, &entity.Product{ID: "p1", Name: "Filtro", QuantityRemaining: 5, QuantityThreshold: 1, UpdatedAt: now}))
	require.NoError(t, products.Create(ctx, &entity.Product{ID: "p2", Name: "Bujía", QuantityRemaining: 1, QuantityThreshold: 1, UpdatedAt: now}))

	orders := memory.NewOrderRepository(store)
	for _, o := range []*entity.Order{
		{ID: "o1", Status: entity.OrderCompleted, Total: decimal.NewFromInt(100), CashierID: "c1",
			Items: []entity.OrderItem{{ProductID: "p1", Count: 2}}, CreatedAt: now.Add(-5 * time.Hour)},
		{ID: "o2", Status: entity.OrderCompleted, Total: decimal.NewFromInt(50), CashierID: "c2",
			Items: []entity.OrderItem{{ProductID: "p2", Count: 1}}, CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "o3", Status: entity.OrderCancelled, Total: decimal.NewFromInt(999), CashierID: "c1",
			Items: []entity.OrderItem{{ProductID: "p1", Count: 9}}, CreatedAt: now.Add(-time.Hour)},
		{ID: "o4", Status: entity.OrderCompleted, Total: decimal.NewFromInt(200), CashierID: "c1",
			Items: []entity.OrderItem{{ProductID: "p1", Count: 3}}, CreatedAt: time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)},
		{ID: "o5", Status: entity.OrderReserved, Total: decimal.NewFromInt(777), CashierID: "c1",
			Items: []entity.OrderItem{{ProductID: "p2", Count: 1}}, CreatedAt: now.Add(-2 * time.Hour)},
	} {
		_, err := orders.Create(ctx, o)
		require.NoError(t, err)
	}
	return store
}

func newDashboard(t *testing.T, store *memory.Store) *analytics.DashboardUseCase {
	t.Helper()
	return analytics.NewDashboardUseCase(memory.NewAnalyticsRepository(store), logger.Nop(),
		analytics.WithClock(func() time.Time { return now }),
		analytics.WithLocation(time.UTC))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ─── Sales statistics ────────────────────────────────────────────────────────

func TestGetSalesStatistics_SoloCompletadas(t *testing.T) {
	uc := newDashboard(t, seedStore(t))

	got, err := uc.GetSalesStatistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, got.TotalSales)
	assert.True(t, dec("150").Equal(got.TotalIncome), "got %s", got.TotalIncome)
	assert.Equal(t, 2, got.ActiveProducts)
	assert.Equal(t, 1, got.LowStock)

	assert.True(t, dec("100").Equal(got.Trends.TotalSales))
	assert.True(t, dec("-25").Equal(got.Trends.TotalIncome))
	assert.True(t, dec("100").Equal(got.Trends.ActiveProducts), "mes anterior en cero")
}

func TestGetSalesStatistics_Series(t *testing.T) {
	uc := newDashboard(t, seedStore(t))

	got, err := uc.GetSalesStatistics(context.Background())
	require.NoError(t, err)

	require.Len(t, got.DailySales, 7)
	assert.Equal(t, "Sun", got.DailySales[0].Label)
	assert.Equal(t, "Sat", got.DailySales[6].Label)
	assert.True(t, dec("50").Equal(got.DailySales[2].Amount), "martes")
	assert.True(t, dec("100").Equal(got.DailySales[3].Amount), "miércoles")

	require.Len(t, got.WeeklySales, 7)
	assert.Equal(t, "2026-W5", got.WeeklySales[0].Label)
	assert.Equal(t, "2026-W11", got.WeeklySales[6].Label)
	assert.True(t, dec("150").Equal(got.WeeklySales[6].Amount))
	assert.True(t, dec("200").Equal(got.WeeklySales[2].Amount), "2026-W7")

	require.Len(t, got.MonthlySales, 12)
	assert.Equal(t, "2025-04", got.MonthlySales[0].Label)
	assert.Equal(t, "2026-03", got.MonthlySales[11].Label)
	assert.True(t, dec("200").Equal(got.MonthlySales[10].Amount))
	assert.True(t, dec("150").Equal(got.MonthlySales[11].Amount))
}

func TestGetSalesStatistics_TopVendidos(t *testing.T) {
	uc := newDashboard(t, seedStore(t))

	got, err := uc.GetSalesStatistics(context.Background())
	require.NoError(t, err)

	require.Len(t, got.TopSelling.Day, 1)
	assert.Equal(t, "p1", got.TopSelling.Day[0].ProductID)
	assert.Equal(t, 2, got.TopSelling.Day[0].TotalSold)

	require.Len(t, got.TopSelling.Week, 2)
	require.Len(t, got.TopSelling.Month, 2)
	assert.Equal(t, "Filtro", got.TopSelling.Month[0].Name)
}

// failingRepo simula un almacén de lectura caído.
type failingRepo struct{}

var errDown = errors.New("conexión perdida")

func (failingRepo) PeriodTotals(context.Context, time.Time, time.Time, string) (entity.PeriodTotals, error) {
	return entity.PeriodTotals{}, errDown
}
func (failingRepo) DailyRevenue(context.Context, time.Time, time.Time, *time.Location) ([]entity.DailyRevenue, error) {
	return nil, errDown
}
func (failingRepo) TopSellers(context.Context, time.Time, time.Time, int) ([]entity.TopSeller, error) {
	return nil, errDown
}
func (failingRepo) CountActiveProducts(context.Context, time.Time, time.Time) (int, error) {
	return 0, errDown
}
func (failingRepo) CountLowStockProducts(context.Context, time.Time, time.Time) (int, error) {
	return 0, errDown
}

func TestGetSalesStatistics_FallosDegradanACero(t *testing.T) {
	uc := analytics.NewDashboardUseCase(failingRepo{}, logger.Nop(), analytics.WithClock(func() time.Time { return now }))

	got, err := uc.GetSalesStatistics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.TotalSales)
	assert.True(t, got.TotalIncome.IsZero())
	assert.Len(t, got.DailySales, 7)
	assert.Len(t, got.MonthlySales, 12)
	assert.Empty(t, got.TopSelling.Month)

	stats, err := uc.GetPeriodStatistics(context.Background(), analytics.PeriodToday, "")
	require.NoError(t, err)
	assert.Zero(t, stats.TransactionCount)
}

// ─── Period / cashier statistics ─────────────────────────────────────────────

func TestGetPeriodStatistics(t *testing.T) {
	uc := newDashboard(t, seedStore(t))

	today, err := uc.GetPeriodStatistics(context.Background(), analytics.PeriodToday, "")
	require.NoError(t, err)
	assert.Equal(t, 1, today.TransactionCount)
	assert.Equal(t, 2, today.ItemsSold)
	assert.True(t, dec("100").Equal(today.AvgTransactionValue))

	year, err := uc.GetPeriodStatistics(context.Background(), analytics.PeriodThisYear, "")
	require.NoError(t, err)
	assert.Equal(t, 3, year.TransactionCount)
	assert.True(t, dec("116.67").Equal(year.AvgTransactionValue), "got %s", year.AvgTransactionValue)
	assert.True(t, dec("2").Equal(year.AvgItemsPerTransaction))

	_, err = uc.GetPeriodStatistics(context.Background(), analytics.Period("forever"), "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestGetCashierStatistics(t *testing.T) {
	uc := newDashboard(t, seedStore(t))

	got, err := uc.GetCashierStatistics(context.Background(), "c1")
	require.NoError(t, err)

	assert.True(t, dec("100").Equal(got.Today.Total))
	assert.Zero(t, got.Yesterday.TransactionCount, "la venta de ayer es de otro cajero")
	assert.True(t, dec("100").Equal(got.ChangeTodayVsYesterday))
	assert.True(t, dec("200").Equal(got.LastMonth.Total))
	assert.True(t, dec("-100").Equal(got.ChangeMonthVsLast))
	assert.Equal(t, 2, got.ThisYear.TransactionCount)
	assert.True(t, dec("150").Equal(got.ThisYear.AvgTransactionValue))
	assert.Equal(t, 1, got.ThisWeek.TransactionCount)

	_, err = uc.GetCashierStatistics(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ─── Helpers puros ───────────────────────────────────────────────────────────

func TestTrend(t *testing.T) {
	assert.True(t, dec("100").Equal(analytics.Trend(dec("5"), decimal.Zero)))
	assert.True(t, dec("50").Equal(analytics.Trend(dec("15"), dec("10"))))
	assert.True(t, dec("-33.33").Equal(analytics.Trend(dec("2"), dec("3"))))
}

func TestRange_SemanaEmpiezaDomingo(t *testing.T) {
	from, to, err := analytics.Range(analytics.PeriodThisWeek, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), to)

	from, to, err = analytics.Range(analytics.PeriodLastMonth, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), to)
}
