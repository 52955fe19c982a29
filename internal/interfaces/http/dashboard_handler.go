package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/pos-ledger/internal/application/analytics"
)

// DashboardHandler maneja los endpoints de estadísticas de ventas.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// CashierStatistics devuelve los ocho períodos del cajero autenticado.
// GET /api/orders/statistics
//
// Respuesta: CashierStatisticsDTO (today ... last_year, change_today_vs_yesterday,
// change_month_vs_last). Solo cuentan órdenes completadas.
func (h *DashboardHandler) CashierStatistics(c *fiber.Ctx) error {
	out, err := h.uc.GetCashierStatistics(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SalesStatistics godoc
// @Summary      Panel global de ventas
// @Description  Totales del mes, tendencias contra el mes anterior, series diaria,
//
//	semanal y mensual, y los más vendidos por día, semana y mes.
//
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SalesStatisticsDTO
// @Router       /api/orders/sales-statistics [get]
func (h *DashboardHandler) SalesStatistics(c *fiber.Ctx) error {
	out, err := h.uc.GetSalesStatistics(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PeriodStatistics godoc
// @Summary      Estadísticas de un período
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        period      query  string  true   "today, yesterday, this_week, last_week, this_month, last_month, this_year, last_year"
// @Param        cashier_id  query  string  false  "Filtrar por cajero"
// @Success      200  {object}  dto.PeriodStatsDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders/period-statistics [get]
func (h *DashboardHandler) PeriodStatistics(c *fiber.Ctx) error {
	period := appanalytics.Period(c.Query("period", string(appanalytics.PeriodToday)))
	out, err := h.uc.GetPeriodStatistics(c.UserContext(), period, c.Query("cashier_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
