package repository

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// SKURepository define el puerto de persistencia de fragmentos y SKUs canónicos.
// Los Find*/Get* devuelven (nil, nil) cuando no hay coincidencia.
type SKURepository interface {
	// UpsertFragment devuelve el fragmento (position, value), creándolo si no existe.
	UpsertFragment(ctx context.Context, position int, value string) (*entity.SKUFragment, error)
	FindFragment(ctx context.Context, position int, value string) (*entity.SKUFragment, error)
	FragmentsByPosition(ctx context.Context, position int) ([]*entity.SKUFragment, error)

	// UpsertCanonical devuelve el SKU con esa clave de contenido, creándolo si no existe.
	// created indica si el registro se insertó en esta llamada.
	UpsertCanonical(ctx context.Context, contentKey string, fragments []entity.SKUFragment) (sku *entity.CanonicalSKU, created bool, err error)
	FindCanonicalByKey(ctx context.Context, contentKey string) (*entity.CanonicalSKU, error)
	GetCanonical(ctx context.Context, id string) (*entity.CanonicalSKU, error)
	ListCanonical(ctx context.Context, limit, offset int) ([]*entity.CanonicalSKU, int, error)
	// UpdateCanonical reemplaza los fragmentos. domain.ErrDuplicate si la clave ya pertenece a otro SKU.
	UpdateCanonical(ctx context.Context, id, contentKey string, fragments []entity.SKUFragment) error
	// DeleteCanonical elimina el SKU; los productos que lo referencian quedan sin SKU.
	DeleteCanonical(ctx context.Context, id string) error
}
