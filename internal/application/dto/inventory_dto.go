package dto

// ReplenishmentSuggestionDTO producto con stock bajo o agotado y la cantidad sugerida a pedir.
type ReplenishmentSuggestionDTO struct {
	ProductID         string `json:"product_id"`
	Name              string `json:"name"`
	Status            string `json:"status"`
	QuantityRemaining int    `json:"quantity_remaining"`
	QuantityThreshold int    `json:"quantity_threshold"`
	UnitsSold90d      int    `json:"units_sold_90d"`
	SuggestedQuantity int    `json:"suggested_quantity"`
	Priority          int    `json:"priority"` // 1 = más urgente
}
