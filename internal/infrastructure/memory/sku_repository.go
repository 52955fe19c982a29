package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.SKURepository = (*SKURepo)(nil)

// SKURepo implementación en memoria de SKURepository.
// Emula las restricciones únicas (position, value) y content_key.
type SKURepo struct {
	b binding
}

// NewSKURepository repositorio sobre el último estado confirmado.
func NewSKURepository(s *Store) *SKURepo {
	return &SKURepo{b: binding{store: s}}
}

func (r *SKURepo) UpsertFragment(ctx context.Context, position int, value string) (*entity.SKUFragment, error) {
	var out entity.SKUFragment
	err := r.b.write(ctx, func(st *state) error {
		key := fragmentKey{position: position, value: value}
		if id, ok := st.fragByKey[key]; ok {
			out = *st.fragments[id]
			return nil
		}
		f := &entity.SKUFragment{ID: uuid.New().String(), Position: position, Value: value, CreatedAt: r.b.store.now()}
		st.fragments[f.ID] = f
		st.fragByKey[key] = f.ID
		out = *f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *SKURepo) FindFragment(ctx context.Context, position int, value string) (*entity.SKUFragment, error) {
	var out *entity.SKUFragment
	err := r.b.read(ctx, func(st *state) error {
		if id, ok := st.fragByKey[fragmentKey{position: position, value: value}]; ok {
			f := *st.fragments[id]
			out = &f
		}
		return nil
	})
	return out, err
}

func (r *SKURepo) FragmentsByPosition(ctx context.Context, position int) ([]*entity.SKUFragment, error) {
	var out []*entity.SKUFragment
	err := r.b.read(ctx, func(st *state) error {
		for _, f := range st.fragments {
			if f.Position == position {
				c := *f
				out = append(out, &c)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
		return nil
	})
	return out, err
}

func (r *SKURepo) UpsertCanonical(ctx context.Context, contentKey string, fragments []entity.SKUFragment) (*entity.CanonicalSKU, bool, error) {
	var (
		out     *entity.CanonicalSKU
		created bool
	)
	err := r.b.write(ctx, func(st *state) error {
		if id, ok := st.skuByKey[contentKey]; ok {
			out = st.skus[id].Clone()
			return nil
		}
		now := r.b.store.now()
		c := &entity.CanonicalSKU{
			ID:         uuid.New().String(),
			ContentKey: contentKey,
			Fragments:  append([]entity.SKUFragment(nil), fragments...),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		c.SortFragments()
		st.skus[c.ID] = c
		st.skuByKey[contentKey] = c.ID
		out = c.Clone()
		created = true
		return nil
	})
	return out, created, err
}

func (r *SKURepo) FindCanonicalByKey(ctx context.Context, contentKey string) (*entity.CanonicalSKU, error) {
	var out *entity.CanonicalSKU
	err := r.b.read(ctx, func(st *state) error {
		if id, ok := st.skuByKey[contentKey]; ok {
			out = st.skus[id].Clone()
		}
		return nil
	})
	return out, err
}

func (r *SKURepo) GetCanonical(ctx context.Context, id string) (*entity.CanonicalSKU, error) {
	var out *entity.CanonicalSKU
	err := r.b.read(ctx, func(st *state) error {
		out = st.skus[id].Clone()
		return nil
	})
	return out, err
}

func (r *SKURepo) ListCanonical(ctx context.Context, limit, offset int) ([]*entity.CanonicalSKU, int, error) {
	var (
		list  []*entity.CanonicalSKU
		total int
	)
	err := r.b.read(ctx, func(st *state) error {
		all := make([]*entity.CanonicalSKU, 0, len(st.skus))
		for _, c := range st.skus {
			all = append(all, c)
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.After(all[j].CreatedAt)
			}
			return all[i].ID < all[j].ID
		})
		total = len(all)
		from, to := paginate(total, limit, offset)
		for _, c := range all[from:to] {
			list = append(list, c.Clone())
		}
		return nil
	})
	return list, total, err
}

func (r *SKURepo) UpdateCanonical(ctx context.Context, id, contentKey string, fragments []entity.SKUFragment) error {
	return r.b.write(ctx, func(st *state) error {
		c, ok := st.skus[id]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrSKUNotFound, id)
		}
		if other, taken := st.skuByKey[contentKey]; taken && other != id {
			return domain.ErrDuplicate
		}
		delete(st.skuByKey, c.ContentKey)
		c.ContentKey = contentKey
		c.Fragments = append([]entity.SKUFragment(nil), fragments...)
		c.SortFragments()
		c.UpdatedAt = r.b.store.now()
		st.skuByKey[contentKey] = id
		return nil
	})
}

func (r *SKURepo) DeleteCanonical(ctx context.Context, id string) error {
	return r.b.write(ctx, func(st *state) error {
		c, ok := st.skus[id]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrSKUNotFound, id)
		}
		delete(st.skuByKey, c.ContentKey)
		delete(st.skus, id)
		for _, p := range st.products {
			if p.CanonicalSKUID != nil && *p.CanonicalSKUID == id {
				p.CanonicalSKUID = nil
			}
		}
		return nil
	})
}
