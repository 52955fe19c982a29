package sku_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/sku"
)

func TestSplit_LimpiaFragmentos(t *testing.T) {
	got, err := sku.Split(" ENG - 100 -A ")
	require.NoError(t, err)
	assert.Equal(t, []string{"ENG", "100", "A"}, got)
}

func TestSplit_VacioEsSinSKU(t *testing.T) {
	got, err := sku.Split("   ")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSplit_FragmentoVacioEsInvalido(t *testing.T) {
	_, err := sku.Split("ENG--A")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = sku.Split("ENG-")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSplit_NormalizaNFC(t *testing.T) {
	// "é" descompuesto (e + acento combinante) y compuesto deben coincidir.
	a, err := sku.Split("CAFe\u0301-1")
	require.NoError(t, err)
	b, err := sku.Split("CAF\u00e9-1")
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestContentKey_IgualdadDeConjunto(t *testing.T) {
	k1 := sku.ContentKey([]string{"a", "b", "c"})
	k2 := sku.ContentKey([]string{"c", "a", "b"})
	k3 := sku.ContentKey([]string{"a", "b"})
	assert.Equal(t, k1, k2, "mismos miembros, mismo tamaño")
	assert.NotEqual(t, k1, k3, "distinto tamaño")
}

func TestLookupKey_SensibleAlOrden(t *testing.T) {
	assert.NotEqual(t, sku.LookupKey([]string{"A", "B"}), sku.LookupKey([]string{"B", "A"}))
	assert.NotEqual(t, sku.LookupKey([]string{"AB", "C"}), sku.LookupKey([]string{"A", "BC"}))
}

func TestDisplay_OrdenaPorPosicion(t *testing.T) {
	frags := []entity.SKUFragment{
		{ID: "3", Position: 2, Value: "A"},
		{ID: "1", Position: 0, Value: "ENG"},
		{ID: "2", Position: 1, Value: "100"},
	}
	assert.Equal(t, "ENG-100-A", sku.Display(frags))
}
