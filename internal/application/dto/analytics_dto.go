package dto

import "github.com/shopspring/decimal"

// PeriodStatsDTO agregados de un período (solo órdenes completadas).
type PeriodStatsDTO struct {
	Total                  decimal.Decimal `json:"total"`
	TransactionCount       int             `json:"transaction_count"`
	ItemsSold              int             `json:"items_sold"`
	AvgTransactionValue    decimal.Decimal `json:"avg_transaction_value"`
	AvgItemsPerTransaction decimal.Decimal `json:"avg_items_per_transaction"`
}

// CashierStatisticsDTO respuesta de GET /api/orders/statistics.
type CashierStatisticsDTO struct {
	Today                  PeriodStatsDTO  `json:"today"`
	Yesterday              PeriodStatsDTO  `json:"yesterday"`
	ThisWeek               PeriodStatsDTO  `json:"this_week"`
	LastWeek               PeriodStatsDTO  `json:"last_week"`
	ThisMonth              PeriodStatsDTO  `json:"this_month"`
	LastMonth              PeriodStatsDTO  `json:"last_month"`
	ThisYear               PeriodStatsDTO  `json:"this_year"`
	LastYear               PeriodStatsDTO  `json:"last_year"`
	ChangeTodayVsYesterday decimal.Decimal `json:"change_today_vs_yesterday"`
	ChangeMonthVsLast      decimal.Decimal `json:"change_month_vs_last"`
}

// SalesTrendsDTO variación porcentual frente al mes anterior (100 si el mes anterior fue cero).
type SalesTrendsDTO struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalIncome    decimal.Decimal `json:"total_income"`
	ActiveProducts decimal.Decimal `json:"active_products"`
	LowStock       decimal.Decimal `json:"low_stock"`
}

// SeriesPointDTO punto de una serie: etiqueta (día, semana ISO o mes) e ingresos.
type SeriesPointDTO struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// TopSellerDTO producto más vendido en un período.
type TopSellerDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	TotalSold int    `json:"total_sold"`
}

// TopSellersByPeriodDTO top de ventas por día, semana y mes en curso.
type TopSellersByPeriodDTO struct {
	Day   []TopSellerDTO `json:"day"`
	Week  []TopSellerDTO `json:"week"`
	Month []TopSellerDTO `json:"month"`
}

// SalesStatisticsDTO respuesta de GET /api/orders/sales-statistics.
type SalesStatisticsDTO struct {
	TotalSales     int                   `json:"total_sales"`
	TotalIncome    decimal.Decimal       `json:"total_income"`
	ActiveProducts int                   `json:"active_products"`
	LowStock       int                   `json:"low_stock"`
	Trends         SalesTrendsDTO        `json:"trends"`
	DailySales     []SeriesPointDTO      `json:"daily_sales"`
	WeeklySales    []SeriesPointDTO      `json:"weekly_sales"`
	MonthlySales   []SeriesPointDTO      `json:"monthly_sales"`
	TopSelling     TopSellersByPeriodDTO `json:"top_selling_products_by_period"`
}
