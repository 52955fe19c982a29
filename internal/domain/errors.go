package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrProductNotFound    = fmt.Errorf("%w: producto", ErrNotFound)
	ErrOrderNotFound      = fmt.Errorf("%w: orden", ErrNotFound)
	ErrSKUNotFound        = fmt.Errorf("%w: sku", ErrNotFound)
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrIllegalTransition  = errors.New("transición de estado no permitida")
	ErrAlreadyCancelled   = fmt.Errorf("%w: la orden ya está cancelada", ErrIllegalTransition)
	ErrAlreadyReturned    = fmt.Errorf("%w: la orden ya fue devuelta", ErrIllegalTransition)
	ErrStorageUnavailable = errors.New("almacenamiento no disponible")
)

// InsufficientStockError identifica el producto y el faltante que abortaron la operación.
// errors.Is(err, ErrInsufficientStock) es verdadero para este tipo.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

// Shortfall unidades que faltan para completar la salida.
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s: solicitado %d, disponible %d, faltan %d",
		e.ProductID, e.Requested, e.Available, e.Shortfall())
}

// Is permite comparar contra el sentinel ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
