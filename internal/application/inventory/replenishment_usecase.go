package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

const (
	replenishmentWindowDays = 90
	replenishmentTopSellers = 500
)

// ReplenishmentUseCase genera la lista de reposición a partir del estado de stock
// y del historial de ventas completadas.
type ReplenishmentUseCase struct {
	productRepo   repository.ProductRepository
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	productRepo repository.ProductRepository,
	analyticsRepo repository.AnalyticsRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		productRepo:   productRepo,
		analyticsRepo: analyticsRepo,
		now:           time.Now,
	}
}

// GenerateReplenishmentList devuelve los productos con stock bajo o agotado, la cantidad
// sugerida de pedido y un ranking de prioridad: primero agotados, luego mayor volumen
// de ventas en 90 días, finalmente mayor déficit frente al umbral.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	// 1. Productos agotados y con stock bajo
	var candidates []*entity.Product
	for _, status := range []entity.StockStatus{entity.StockOutOfStock, entity.StockLow} {
		list, _, err := uc.productRepo.List(ctx, repository.ProductFilter{Status: status})
		if err != nil {
			return nil, fmt.Errorf("reposición: listar %s: %w", status, err)
		}
		candidates = append(candidates, list...)
	}
	if len(candidates) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	// 2. Unidades vendidas por producto (últimos 90 días). Sin historial se sugiere solo por umbral.
	end := uc.now()
	start := end.AddDate(0, 0, -replenishmentWindowDays)
	sellers, _ := uc.analyticsRepo.TopSellers(ctx, start, end, replenishmentTopSellers)
	soldByID := make(map[string]int, len(sellers))
	for _, s := range sellers {
		soldByID[s.ProductID] = s.TotalSold
	}

	// 3. Cantidad sugerida: llevar el stock al doble del umbral o a la demanda de un mes
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(candidates))
	for _, p := range candidates {
		sold := soldByID[p.ID]
		ideal := 2 * p.QuantityThreshold
		if monthly := (sold + 2) / 3; monthly > ideal {
			ideal = monthly
		}
		if ideal <= p.QuantityThreshold {
			ideal = p.QuantityThreshold + 1
		}
		suggested := ideal - p.QuantityRemaining
		if suggested < 1 {
			suggested = 1
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:         p.ID,
			Name:              p.Name,
			Status:            string(p.Status),
			QuantityRemaining: p.QuantityRemaining,
			QuantityThreshold: p.QuantityThreshold,
			UnitsSold90d:      sold,
			SuggestedQuantity: suggested,
		})
	}

	// 4. Ordenar por urgencia
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		aOut, bOut := a.QuantityRemaining == 0, b.QuantityRemaining == 0
		if aOut != bOut {
			return aOut
		}
		if a.UnitsSold90d != b.UnitsSold90d {
			return a.UnitsSold90d > b.UnitsSold90d
		}
		// Tiebreak: mayor déficit absoluto
		return a.QuantityThreshold-a.QuantityRemaining > b.QuantityThreshold-b.QuantityRemaining
	})

	// 5. Asignar prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
