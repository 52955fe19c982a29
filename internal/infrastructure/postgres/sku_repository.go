package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.SKURepository = (*SKURepo)(nil)

// SKURepo fragmentos y SKUs canónicos sobre PostgreSQL (usable con pool o tx).
// La unicidad (position, value) y content_key la garantizan los índices únicos.
type SKURepo struct {
	q Querier
}

// NewSKURepository construye el adaptador. Pasar pool o tx (Querier).
func NewSKURepository(q Querier) *SKURepo {
	return &SKURepo{q: q}
}

// UpsertFragment el DO UPDATE sin cambios hace que RETURNING devuelva también la fila existente.
func (r *SKURepo) UpsertFragment(ctx context.Context, position int, value string) (*entity.SKUFragment, error) {
	var f entity.SKUFragment
	err := r.q.QueryRow(ctx, `
		INSERT INTO sku_fragments (id, position, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (position, value) DO UPDATE SET value = EXCLUDED.value
		RETURNING id, position, value, created_at`,
		uuid.New().String(), position, value,
	).Scan(&f.ID, &f.Position, &f.Value, &f.CreatedAt)
	if err != nil {
		return nil, wrapErr("upsert sku fragment", err)
	}
	return &f, nil
}

func (r *SKURepo) FindFragment(ctx context.Context, position int, value string) (*entity.SKUFragment, error) {
	var f entity.SKUFragment
	err := r.q.QueryRow(ctx,
		`SELECT id, position, value, created_at FROM sku_fragments WHERE position = $1 AND value = $2`,
		position, value,
	).Scan(&f.ID, &f.Position, &f.Value, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("find sku fragment", err)
	}
	return &f, nil
}

func (r *SKURepo) FragmentsByPosition(ctx context.Context, position int) ([]*entity.SKUFragment, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, position, value, created_at FROM sku_fragments WHERE position = $1 ORDER BY value`, position)
	if err != nil {
		return nil, wrapErr("list sku fragments", err)
	}
	defer rows.Close()

	var out []*entity.SKUFragment
	for rows.Next() {
		var f entity.SKUFragment
		if err := rows.Scan(&f.ID, &f.Position, &f.Value, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sku fragment: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (r *SKURepo) UpsertCanonical(ctx context.Context, contentKey string, fragments []entity.SKUFragment) (*entity.CanonicalSKU, bool, error) {
	c := entity.CanonicalSKU{ContentKey: contentKey}
	err := r.q.QueryRow(ctx, `
		INSERT INTO canonical_skus (id, content_key)
		VALUES ($1, $2)
		ON CONFLICT (content_key) DO NOTHING
		RETURNING id, created_at, updated_at`,
		uuid.New().String(), contentKey,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// otra transacción ya lo registró
		existing, fErr := r.FindCanonicalByKey(ctx, contentKey)
		if fErr != nil {
			return nil, false, fErr
		}
		if existing == nil {
			return nil, false, fmt.Errorf("upsert canonical sku: %w: clave %s", domain.ErrConflict, contentKey)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, wrapErr("upsert canonical sku", err)
	}

	if err := r.linkFragments(ctx, c.ID, fragments); err != nil {
		return nil, false, err
	}
	c.Fragments = append([]entity.SKUFragment(nil), fragments...)
	c.SortFragments()
	return &c, true, nil
}

func (r *SKURepo) FindCanonicalByKey(ctx context.Context, contentKey string) (*entity.CanonicalSKU, error) {
	return r.getCanonical(ctx, `content_key = $1`, contentKey)
}

func (r *SKURepo) GetCanonical(ctx context.Context, id string) (*entity.CanonicalSKU, error) {
	return r.getCanonical(ctx, `id = $1`, id)
}

func (r *SKURepo) getCanonical(ctx context.Context, cond string, arg any) (*entity.CanonicalSKU, error) {
	var c entity.CanonicalSKU
	err := r.q.QueryRow(ctx,
		`SELECT id, content_key, created_at, updated_at FROM canonical_skus WHERE `+cond, arg,
	).Scan(&c.ID, &c.ContentKey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get canonical sku", err)
	}
	frags, err := r.fragmentsOf(ctx, []string{c.ID})
	if err != nil {
		return nil, err
	}
	c.Fragments = frags[c.ID]
	return &c, nil
}

func (r *SKURepo) ListCanonical(ctx context.Context, limit, offset int) ([]*entity.CanonicalSKU, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM canonical_skus`).Scan(&total); err != nil {
		return nil, 0, wrapErr("count canonical skus", err)
	}

	query := `SELECT id, content_key, created_at, updated_at FROM canonical_skus ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapErr("list canonical skus", err)
	}
	var (
		list []*entity.CanonicalSKU
		ids  []string
	)
	for rows.Next() {
		var c entity.CanonicalSKU
		if err := rows.Scan(&c.ID, &c.ContentKey, &c.CreatedAt, &c.UpdatedAt); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan canonical sku: %w", err)
		}
		list = append(list, &c)
		ids = append(ids, c.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, wrapErr("list canonical skus", err)
	}

	frags, err := r.fragmentsOf(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, c := range list {
		c.Fragments = frags[c.ID]
	}
	return list, total, nil
}

func (r *SKURepo) UpdateCanonical(ctx context.Context, id, contentKey string, fragments []entity.SKUFragment) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE canonical_skus SET content_key = $2, updated_at = now() WHERE id = $1`, id, contentKey)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("update canonical sku", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSKUNotFound, id)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM canonical_sku_fragments WHERE sku_id = $1`, id); err != nil {
		return wrapErr("unlink sku fragments", err)
	}
	return r.linkFragments(ctx, id, fragments)
}

// DeleteCanonical la FK ON DELETE SET NULL deja a los productos sin SKU.
func (r *SKURepo) DeleteCanonical(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM canonical_skus WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete canonical sku", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSKUNotFound, id)
	}
	return nil
}

func (r *SKURepo) linkFragments(ctx context.Context, skuID string, fragments []entity.SKUFragment) error {
	for _, f := range fragments {
		if _, err := r.q.Exec(ctx,
			`INSERT INTO canonical_sku_fragments (sku_id, fragment_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			skuID, f.ID,
		); err != nil {
			return wrapErr("link sku fragment", err)
		}
	}
	return nil
}

// fragmentsOf fragmentos de cada SKU, ordenados por posición.
func (r *SKURepo) fragmentsOf(ctx context.Context, skuIDs []string) (map[string][]entity.SKUFragment, error) {
	out := make(map[string][]entity.SKUFragment, len(skuIDs))
	if len(skuIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT l.sku_id, f.id, f.position, f.value, f.created_at
		FROM canonical_sku_fragments l
		JOIN sku_fragments f ON f.id = l.fragment_id
		WHERE l.sku_id = ANY($1)
		ORDER BY l.sku_id, f.position`, skuIDs)
	if err != nil {
		return nil, wrapErr("load sku fragments", err)
	}
	defer rows.Close()
	for rows.Next() {
		var skuID string
		var f entity.SKUFragment
		if err := rows.Scan(&skuID, &f.ID, &f.Position, &f.Value, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sku fragment: %w", err)
		}
		out[skuID] = append(out[skuID], f)
	}
	return out, rows.Err()
}
