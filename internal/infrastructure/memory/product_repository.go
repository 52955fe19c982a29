package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	b binding
}

// NewProductRepository repositorio sobre el último estado confirmado.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{b: binding{store: s}}
}

func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	return r.b.write(ctx, func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[product.ID] = product.Clone()
		return nil
	})
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.b.read(ctx, func(st *state) error {
		out = st.products[id].Clone()
		return nil
	})
	return out, err
}

// GetForUpdate en memoria el bloqueo lo da la serialización de escritores.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	return r.b.write(ctx, func(st *state) error {
		p, ok := st.products[product.ID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, product.ID)
		}
		in := product.Clone()
		p.Name = in.Name
		p.Brand = in.Brand
		p.Description = in.Description
		p.Images = in.Images
		p.UniqueCode = in.UniqueCode
		p.PartNumber = in.PartNumber
		p.Price = in.Price
		p.CanonicalSKUID = in.CanonicalSKUID
		p.Tags = in.Tags
		p.ParentID = in.ParentID
		p.UpdatedAt = r.b.store.now()
		return nil
	})
}

func (r *ProductRepo) UpdateStock(ctx context.Context, id string, remaining, sold, threshold int, status entity.StockStatus) error {
	return r.b.write(ctx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
		}
		p.QuantityRemaining = remaining
		p.QuantitySold = sold
		p.QuantityThreshold = threshold
		p.Status = status
		p.UpdatedAt = r.b.store.now()
		return nil
	})
}

func (r *ProductRepo) SoftDelete(ctx context.Context, id string) error {
	return r.b.write(ctx, func(st *state) error {
		p, ok := st.products[id]
		if !ok || p.IsDeleted {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
		}
		p.IsDeleted = true
		p.UpdatedAt = r.b.store.now()
		return nil
	})
}

func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var (
		list  []*entity.Product
		total int
	)
	err := r.b.read(ctx, func(st *state) error {
		search := strings.ToLower(strings.TrimSpace(f.Search))
		var matched []*entity.Product
		for _, p := range st.products {
			if p.IsDeleted {
				continue
			}
			if f.Status != "" && p.Status != f.Status {
				continue
			}
			if f.NoVariant && p.ParentID != nil {
				continue
			}
			if f.ParentID != "" && (p.ParentID == nil || *p.ParentID != f.ParentID) {
				continue
			}
			if search != "" && !productMatches(p, search) {
				continue
			}
			matched = append(matched, p)
		}
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
			return matched[i].ID < matched[j].ID
		})
		total = len(matched)
		from, to := paginate(total, f.Limit, f.Offset)
		for _, p := range matched[from:to] {
			list = append(list, p.Clone())
		}
		return nil
	})
	return list, total, err
}

func productMatches(p *entity.Product, search string) bool {
	for _, field := range []string{p.Name, p.Brand, p.UniqueCode, p.PartNumber} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func (r *ProductRepo) GetNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	err := r.b.read(ctx, func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				names[id] = p.Name
			}
		}
		return nil
	})
	return names, err
}
