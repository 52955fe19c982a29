package sku_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/sku"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

func newUseCase(t *testing.T, cache sku.Cache) (*sku.UseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return sku.NewUseCase(store, memory.NewSKURepository(store), cache, logger.Nop()), store
}

// failingCache simula una caché caída.
type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("conexión rechazada")
}
func (failingCache) Set(context.Context, string, string) error { return errors.New("conexión rechazada") }
func (failingCache) Delete(context.Context, ...string) error  { return errors.New("conexión rechazada") }

// ─── Canonicalize ────────────────────────────────────────────────────────────

func TestCanonicalize_DosVecesMismoID(t *testing.T) {
	uc, store := newUseCase(t, nil)
	ctx := context.Background()

	first, created, err := uc.CanonicalizeFragments(ctx, []string{"ENG", "100", "A"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := uc.CanonicalizeFragments(ctx, []string{"ENG", "100", "A"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	repo := memory.NewSKURepository(store)
	for pos := 0; pos < 3; pos++ {
		frags, err := repo.FragmentsByPosition(ctx, pos)
		require.NoError(t, err)
		assert.Len(t, frags, 1, "un fragmento por (posición, valor)")
	}
	_, total, err := repo.ListCanonical(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCanonicalize_CadenaYFragmentosEquivalentes(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	ctx := context.Background()

	a, _, err := uc.Canonicalize(ctx, " ENG - 100 - A ")
	require.NoError(t, err)
	b, _, err := uc.CanonicalizeFragments(ctx, []string{"ENG", "100", "A"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, []string{"ENG", "100", "A"}, a.Values())
}

func TestCanonicalize_FragmentosCompartidos(t *testing.T) {
	uc, store := newUseCase(t, nil)
	ctx := context.Background()

	a, _, err := uc.Canonicalize(ctx, "ENG-100-A")
	require.NoError(t, err)
	b, created, err := uc.Canonicalize(ctx, "ENG-100-B")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Fragments[0].ID, b.Fragments[0].ID, "ENG en posición 0 se reutiliza")

	frags, err := memory.NewSKURepository(store).FragmentsByPosition(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, frags, 2)
}

func TestCanonicalize_PosicionImporta(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	ctx := context.Background()

	a, _, err := uc.Canonicalize(ctx, "A-B")
	require.NoError(t, err)
	b, _, err := uc.Canonicalize(ctx, "B-A")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCanonicalize_VacioNoCreaNada(t *testing.T) {
	uc, _ := newUseCase(t, nil)

	for _, raw := range []string{"", "   "} {
		c, created, err := uc.Canonicalize(context.Background(), raw)
		require.NoError(t, err)
		assert.Nil(t, c)
		assert.False(t, created)
	}
	list, err := uc.List(context.Background(), dto.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, list.Page.Total)
}

func TestCanonicalize_FragmentoVacioEsInvalido(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	_, _, err := uc.Canonicalize(context.Background(), "ENG--A")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ─── Exists / Check ──────────────────────────────────────────────────────────

func TestExists_NoCreaRegistros(t *testing.T) {
	uc, store := newUseCase(t, nil)
	ctx := context.Background()

	ok, err := uc.Exists(ctx, "ENG-100-A")
	require.NoError(t, err)
	assert.False(t, ok)

	frags, err := memory.NewSKURepository(store).FragmentsByPosition(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, frags, "la consulta es de solo lectura")

	_, _, err = uc.Canonicalize(ctx, "ENG-100-A")
	require.NoError(t, err)
	ok, err = uc.Exists(ctx, "ENG-100-A")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = uc.Exists(ctx, "ENG-100")
	require.NoError(t, err)
	assert.False(t, ok, "un prefijo no es el mismo SKU")
}

// ─── Caché ───────────────────────────────────────────────────────────────────

func TestCanonicalize_UsaCache(t *testing.T) {
	cache := memory.NewSKUCache(time.Minute)
	uc, _ := newUseCase(t, cache)
	ctx := context.Background()

	c, _, err := uc.Canonicalize(ctx, "ENG-100-A")
	require.NoError(t, err)

	hit, err := uc.Check(ctx, "ENG-100-A")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, c.ID, hit.ID)

	require.NoError(t, uc.Delete(ctx, c.ID))
	ok, err := uc.Exists(ctx, "ENG-100-A")
	require.NoError(t, err)
	assert.False(t, ok, "la caché se invalida al borrar")
}

func TestCanonicalize_CacheCaidaNoAfecta(t *testing.T) {
	uc, _ := newUseCase(t, failingCache{})
	ctx := context.Background()

	a, created, err := uc.Canonicalize(ctx, "ENG-100-A")
	require.NoError(t, err)
	assert.True(t, created)
	b, _, err := uc.Canonicalize(ctx, "ENG-100-A")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
}

// ─── Bulk / Update / Delete ──────────────────────────────────────────────────

func TestBulkCreate_ErroresPorEntrada(t *testing.T) {
	uc, _ := newUseCase(t, nil)

	res, err := uc.BulkCreate(context.Background(), []string{"ENG-100-A", "ENG--B", "", "ENG-100-A"})
	require.NoError(t, err)
	require.Len(t, res, 4)

	assert.True(t, res[0].Created)
	assert.NotEmpty(t, res[1].Error)
	assert.NotEmpty(t, res[2].Error)
	assert.False(t, res[3].Created)
	assert.Equal(t, res[0].ID, res[3].ID)

	_, err = uc.BulkCreate(context.Background(), nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestUpdate_CambiaFragmentosYDetectaDuplicado(t *testing.T) {
	uc, _ := newUseCase(t, memory.NewSKUCache(0))
	ctx := context.Background()

	a, _, err := uc.Canonicalize(ctx, "ENG-100-A")
	require.NoError(t, err)
	b, _, err := uc.Canonicalize(ctx, "ENG-100-B")
	require.NoError(t, err)

	updated, err := uc.Update(ctx, a.ID, "ENG-200-A")
	require.NoError(t, err)
	assert.Equal(t, "ENG-200-A", sku.ToResponse(updated, false).SKU)

	ok, err := uc.Exists(ctx, "ENG-100-A")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = uc.Update(ctx, a.ID, "ENG-100-B")
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	_, err = uc.Update(ctx, "nope", "X-Y")
	assert.True(t, errors.Is(err, domain.ErrSKUNotFound))

	still, err := uc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ENG", "100", "B"}, still.Values())
}

func TestDelete_LiberaProductos(t *testing.T) {
	uc, store := newUseCase(t, nil)
	ctx := context.Background()

	c, _, err := uc.Canonicalize(ctx, "ENG-100-A")
	require.NoError(t, err)
	products := memory.NewProductRepository(store)
	id := c.ID
	require.NoError(t, products.Create(ctx, &entity.Product{ID: "p1", Name: "Filtro", CanonicalSKUID: &id}))

	require.NoError(t, uc.Delete(ctx, c.ID))
	p, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, p.CanonicalSKUID)

	assert.True(t, errors.Is(uc.Delete(ctx, c.ID), domain.ErrSKUNotFound))
}

func TestFragmentsByPosition(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	ctx := context.Background()
	_, err := uc.BulkCreate(ctx, []string{"ENG-100-A", "TRN-100-B"})
	require.NoError(t, err)

	frags, err := uc.FragmentsByPosition(ctx, 0)
	require.NoError(t, err)
	require.Len(t, frags, 2)
	assert.Equal(t, "ENG", frags[0].Value)
	assert.Equal(t, "TRN", frags[1].Value)

	_, err = uc.FragmentsByPosition(ctx, -1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
