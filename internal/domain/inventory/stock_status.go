package inventory

import "github.com/jhoicas/pos-ledger/internal/domain/entity"

// DeriveStatus implementa la regla única de estado de stock (servicio de dominio).
//
//	remaining == 0                 -> out_of_stock
//	0 < remaining <= threshold     -> low_in_stock
//	remaining > threshold          -> available
//
// El límite es inclusivo: remaining == threshold es low_in_stock.
func DeriveStatus(remaining, threshold int) entity.StockStatus {
	switch {
	case remaining <= 0:
		return entity.StockOutOfStock
	case remaining <= threshold:
		return entity.StockLow
	default:
		return entity.StockAvailable
	}
}
