// Package lifecycle contiene las reglas puras del ciclo de vida de una orden:
// grafo de transiciones, comparación de ítems e identificador de factura.
package lifecycle

import (
	"fmt"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// edges aristas legales. cancelled y returned no tienen salidas.
var edges = map[entity.OrderStatus][]entity.OrderStatus{
	entity.OrderReserved:  {entity.OrderCompleted, entity.OrderCancelled},
	entity.OrderCompleted: {entity.OrderReturned},
}

// IsTerminal indica si el estado no admite más transiciones.
func IsTerminal(s entity.OrderStatus) bool {
	return s == entity.OrderCancelled || s == entity.OrderReturned
}

// IsInitial indica si una orden puede crearse directamente en ese estado.
func IsInitial(s entity.OrderStatus) bool {
	return s == entity.OrderReserved || s == entity.OrderCompleted
}

// CanTransition reporta si from -> to es una arista del grafo.
// La misma transición (from == to) no es arista; el llamador la trata como no-op.
func CanTransition(from, to entity.OrderStatus) bool {
	for _, next := range edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition devuelve nil si from -> to es legal o si from == to.
// Los intentos sobre estados terminales usan los errores específicos
// ErrAlreadyCancelled / ErrAlreadyReturned, ambos ErrIllegalTransition.
func ValidateTransition(from, to entity.OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, to)
	}
	if from == to || CanTransition(from, to) {
		return nil
	}
	return fmt.Errorf("%w: de %q a %q", domain.ErrIllegalTransition, from, to)
}

// ValidateCancel solo se puede cancelar una orden reservada.
func ValidateCancel(current entity.OrderStatus) error {
	switch current {
	case entity.OrderReserved:
		return nil
	case entity.OrderCancelled:
		return domain.ErrAlreadyCancelled
	default:
		return fmt.Errorf("%w: no se puede cancelar una orden en estado %q", domain.ErrIllegalTransition, current)
	}
}

// ValidateReturn solo se puede devolver una orden completada.
func ValidateReturn(current entity.OrderStatus) error {
	switch current {
	case entity.OrderCompleted:
		return nil
	case entity.OrderReturned:
		return domain.ErrAlreadyReturned
	default:
		return fmt.Errorf("%w: no se puede devolver una orden en estado %q", domain.ErrIllegalTransition, current)
	}
}

// ItemsChanged compara dos listas de ítems como multiconjuntos por producto.
// El orden de las líneas no cuenta; las líneas repetidas de un producto se suman.
func ItemsChanged(original, updated []entity.OrderItem) bool {
	a := countsByProduct(original)
	b := countsByProduct(updated)
	if len(a) != len(b) {
		return true
	}
	for id, n := range a {
		if b[id] != n {
			return true
		}
	}
	return false
}

func countsByProduct(items []entity.OrderItem) map[string]int {
	m := make(map[string]int, len(items))
	for _, it := range items {
		m[it.ProductID] += it.Count
	}
	return m
}
