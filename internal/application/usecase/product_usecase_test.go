package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/usecase"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

func newProductUseCase(t *testing.T) (*usecase.ProductUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	uc := usecase.NewProductUseCase(
		store,
		memory.NewProductRepository(store),
		memory.NewSKURepository(store),
		inventory.NewStockLedger(),
		logger.Nop(),
	)
	return uc, store
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func createProduct(t *testing.T, uc *usecase.ProductUseCase, in dto.CreateProductRequest) *dto.ProductResponse {
	t.Helper()
	if in.Name == "" {
		in.Name = "Filtro de aceite"
	}
	out, err := uc.Create(context.Background(), in)
	require.NoError(t, err)
	return out
}

// ─── Create ──────────────────────────────────────────────────────────────────

func TestProductCreate_EstadoDerivado(t *testing.T) {
	uc, _ := newProductUseCase(t)

	cases := []struct {
		qty, threshold int
		want           string
	}{
		{0, 2, "out_of_stock"},
		{2, 2, "low_in_stock"},
		{3, 2, "available"},
	}
	for _, tc := range cases {
		out := createProduct(t, uc, dto.CreateProductRequest{
			Price:             decimal.NewFromInt(35000),
			QuantityRemaining: tc.qty,
			QuantityThreshold: intPtr(tc.threshold),
		})
		assert.Equal(t, tc.want, out.Status, "qty=%d threshold=%d", tc.qty, tc.threshold)
	}
}

func TestProductCreate_UmbralPorDefecto(t *testing.T) {
	uc, _ := newProductUseCase(t)
	out := createProduct(t, uc, dto.CreateProductRequest{QuantityRemaining: 1})
	assert.Equal(t, 1, out.QuantityThreshold)
	assert.Equal(t, "low_in_stock", out.Status)
}

func TestProductCreate_ConSKUCanonico(t *testing.T) {
	uc, _ := newProductUseCase(t)

	a := createProduct(t, uc, dto.CreateProductRequest{SKU: "ENG-100-A", QuantityRemaining: 4})
	b := createProduct(t, uc, dto.CreateProductRequest{SKU: "ENG - 100 - A", QuantityRemaining: 4})

	assert.Equal(t, "ENG-100-A", a.SKU)
	assert.NotEmpty(t, a.SKUID)
	assert.Equal(t, a.SKUID, b.SKUID, "mismo SKU canónico")
}

func TestProductCreate_EntradaInvalida(t *testing.T) {
	uc, _ := newProductUseCase(t)

	cases := map[string]dto.CreateProductRequest{
		"sin nombre":        {Name: "  "},
		"cantidad negativa": {Name: "x", QuantityRemaining: -1},
		"umbral negativo":   {Name: "x", QuantityThreshold: intPtr(-1)},
		"precio negativo":   {Name: "x", Price: decimal.NewFromInt(-5)},
		"sku mal formado":   {Name: "x", SKU: "ENG--A"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), in)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
		})
	}
}

// ─── Variantes ───────────────────────────────────────────────────────────────

func TestProductCreate_VarianteYAgrupacionPlana(t *testing.T) {
	uc, _ := newProductUseCase(t)
	parent := createProduct(t, uc, dto.CreateProductRequest{Name: "Pastillas de freno"})
	variant := createProduct(t, uc, dto.CreateProductRequest{Name: "Pastillas delanteras", ParentID: parent.ID})
	assert.Equal(t, parent.ID, variant.ParentID)

	_, err := uc.Create(context.Background(), dto.CreateProductRequest{Name: "Nieta", ParentID: variant.ID})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "un solo nivel de variantes")

	_, err = uc.Create(context.Background(), dto.CreateProductRequest{Name: "Huérfana", ParentID: "nope"})
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))

	got, err := uc.GetByID(context.Background(), parent.ID)
	require.NoError(t, err)
	require.Len(t, got.Variants, 1)
	assert.Equal(t, variant.ID, got.Variants[0].ID)

	_, err = uc.Update(context.Background(), parent.ID, dto.UpdateProductRequest{ParentID: strPtr(variant.ID)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = uc.Update(context.Background(), parent.ID, dto.UpdateProductRequest{ParentID: strPtr(parent.ID)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ─── Update ──────────────────────────────────────────────────────────────────

func TestProductUpdate_CantidadPasaPorElLedger(t *testing.T) {
	uc, _ := newProductUseCase(t)
	p := createProduct(t, uc, dto.CreateProductRequest{QuantityRemaining: 10, QuantityThreshold: intPtr(2)})
	assert.Equal(t, "available", p.Status)

	out, err := uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{QuantityThreshold: intPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, "low_in_stock", out.Status, "cambiar el umbral recalcula el estado")

	out, err = uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{QuantityRemaining: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, "out_of_stock", out.Status)

	_, err = uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{QuantityRemaining: intPtr(-3)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestProductUpdate_ErrorRevierteDatosDescriptivos(t *testing.T) {
	uc, _ := newProductUseCase(t)
	p := createProduct(t, uc, dto.CreateProductRequest{Name: "Original", QuantityRemaining: 3})

	_, err := uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{
		Name:              strPtr("Nuevo"),
		QuantityRemaining: intPtr(-1),
	})
	require.Error(t, err)

	got, err := uc.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Name)
}

func TestProductUpdate_QuitarYCambiarSKU(t *testing.T) {
	uc, _ := newProductUseCase(t)
	p := createProduct(t, uc, dto.CreateProductRequest{SKU: "ENG-100-A"})

	out, err := uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{SKU: strPtr("ENG-200-B")})
	require.NoError(t, err)
	assert.Equal(t, "ENG-200-B", out.SKU)

	out, err = uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{Brand: strPtr("Bosch")})
	require.NoError(t, err)
	assert.Equal(t, "ENG-200-B", out.SKU, "nil conserva el SKU")

	out, err = uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{SKU: strPtr("")})
	require.NoError(t, err)
	assert.Empty(t, out.SKUID)
}

// ─── List / Delete ───────────────────────────────────────────────────────────

func TestProductList_FiltrosYEliminados(t *testing.T) {
	uc, _ := newProductUseCase(t)
	a := createProduct(t, uc, dto.CreateProductRequest{Name: "Filtro aire", QuantityRemaining: 10})
	createProduct(t, uc, dto.CreateProductRequest{Name: "Bujía", QuantityRemaining: 0})
	createProduct(t, uc, dto.CreateProductRequest{Name: "Filtro combustible", QuantityRemaining: 10, ParentID: a.ID})

	all, err := uc.List(context.Background(), dto.ProductListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Page.Total)

	filters, err := uc.List(context.Background(), dto.ProductListQuery{Search: "filtro", NoVariant: true})
	require.NoError(t, err)
	assert.Equal(t, 1, filters.Page.Total)

	out, err := uc.List(context.Background(), dto.ProductListQuery{Status: "out_of_stock"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Page.Total)
	assert.Equal(t, "Bujía", out.Items[0].Name)

	_, err = uc.List(context.Background(), dto.ProductListQuery{Status: "agotado"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	require.NoError(t, uc.Delete(context.Background(), a.ID))
	all, err = uc.List(context.Background(), dto.ProductListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Page.Total)

	_, err = uc.GetByID(context.Background(), a.ID)
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
	assert.True(t, errors.Is(uc.Delete(context.Background(), a.ID), domain.ErrProductNotFound))
}
