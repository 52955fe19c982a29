package dto

import "time"

// CreateSKURequest body para POST /api/skus. SKU en formato "ENG-100-A".
type CreateSKURequest struct {
	SKU string `json:"sku"`
}

// BulkCreateSKURequest body para POST /api/skus/bulk.
type BulkCreateSKURequest struct {
	SKUs []string `json:"skus"`
}

// UpdateSKURequest body para PUT /api/skus/:id.
type UpdateSKURequest struct {
	SKU string `json:"sku"`
}

// SKUFragmentResponse fragmento posicional.
type SKUFragmentResponse struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Value    string `json:"value"`
}

// SKUResponse SKU canónico con su representación textual.
type SKUResponse struct {
	ID        string                `json:"id"`
	SKU       string                `json:"sku"`
	Fragments []SKUFragmentResponse `json:"fragments"`
	Created   bool                  `json:"created,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// SKUListResponse lista paginada de SKUs.
type SKUListResponse struct {
	Items []SKUResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// SKUCheckResponse resultado de GET /api/skus/check/:sku.
type SKUCheckResponse struct {
	SKU    string       `json:"sku"`
	Exists bool         `json:"exists"`
	Match  *SKUResponse `json:"match,omitempty"`
}

// BulkSKUResult resultado por entrada de la carga masiva.
type BulkSKUResult struct {
	Input   string `json:"input"`
	ID      string `json:"id,omitempty"`
	Created bool   `json:"created"`
	Error   string `json:"error,omitempty"`
}
