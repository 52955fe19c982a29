package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/inventory"
)

func TestDeriveStatus_Limites(t *testing.T) {
	cases := []struct {
		name      string
		remaining int
		threshold int
		want      entity.StockStatus
	}{
		{"cero es agotado", 0, 2, entity.StockOutOfStock},
		{"cero con umbral cero", 0, 0, entity.StockOutOfStock},
		{"uno bajo el umbral", 1, 2, entity.StockLow},
		{"igual al umbral es bajo", 2, 2, entity.StockLow},
		{"sobre el umbral disponible", 3, 2, entity.StockAvailable},
		{"umbral cero con stock", 1, 0, entity.StockAvailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, inventory.DeriveStatus(tc.remaining, tc.threshold))
		})
	}
}

// Escenario: 5 unidades, umbral 2. Vender 3 -> bajo; vender 2 -> agotado; devolver 2 -> bajo.
func TestDeriveStatus_EscenarioVentaDevolucion(t *testing.T) {
	remaining, threshold := 5, 2

	remaining -= 3
	assert.Equal(t, entity.StockLow, inventory.DeriveStatus(remaining, threshold))

	remaining -= 2
	assert.Equal(t, entity.StockOutOfStock, inventory.DeriveStatus(remaining, threshold))

	remaining += 2
	assert.Equal(t, entity.StockLow, inventory.DeriveStatus(remaining, threshold))
}
