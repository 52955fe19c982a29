package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `
	id, name, brand, description, images, unique_code, part_number, price,
	quantity_remaining, quantity_sold, quantity_threshold, status,
	canonical_sku_id, tags, parent_id, is_deleted, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var status string
	err := row.Scan(
		&p.ID, &p.Name, &p.Brand, &p.Description, &p.Images, &p.UniqueCode, &p.PartNumber, &p.Price,
		&p.QuantityRemaining, &p.QuantitySold, &p.QuantityThreshold, &status,
		&p.CanonicalSKUID, &p.Tags, &p.ParentID, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = entity.StockStatus(status)
	return &p, nil
}

// Create persiste un nuevo producto con sus campos de stock iniciales.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Brand, product.Description, nonNilStrings(product.Images),
		product.UniqueCode, product.PartNumber, product.Price,
		product.QuantityRemaining, product.QuantitySold, product.QuantityThreshold, string(product.Status),
		product.CanonicalSKUID, nonNilStrings(product.Tags), product.ParentID, product.IsDeleted,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID (incluye eliminados).
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get product", err)
	}
	return p, nil
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE).
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get product for update", err)
	}
	return p, nil
}

// Update actualiza los datos descriptivos. No toca cantidades ni estado (se manejan vía ledger).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET
			name = $2, brand = $3, description = $4, images = $5, unique_code = $6, part_number = $7,
			price = $8, canonical_sku_id = $9, tags = $10, parent_id = $11, updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Brand, product.Description, nonNilStrings(product.Images),
		product.UniqueCode, product.PartNumber, product.Price, product.CanonicalSKUID,
		nonNilStrings(product.Tags), product.ParentID,
	)
	if err != nil {
		return wrapErr("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, product.ID)
	}
	return nil
}

// UpdateStock escribe los campos de stock (solo desde el StockLedger).
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, remaining, sold, threshold int, status entity.StockStatus) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET
			quantity_remaining = $2, quantity_sold = $3, quantity_threshold = $4, status = $5, updated_at = now()
		WHERE id = $1`,
		id, remaining, sold, threshold, string(status),
	)
	if err != nil {
		return wrapErr("update product stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return nil
}

// SoftDelete marca el producto como eliminado.
func (r *ProductRepo) SoftDelete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET is_deleted = TRUE, updated_at = now() WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return wrapErr("soft delete product", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return nil
}

// List filtra productos no eliminados, más recientes primero.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	where := []string{"NOT is_deleted"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + s + "%")
		where = append(where, fmt.Sprintf(
			"(name ILIKE %[1]s OR brand ILIKE %[1]s OR unique_code ILIKE %[1]s OR part_number ILIKE %[1]s)", p))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(string(f.Status)))
	}
	if f.NoVariant {
		where = append(where, "parent_id IS NULL")
	}
	if f.ParentID != "" {
		where = append(where, "parent_id = "+arg(f.ParentID))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, wrapErr("count products", err)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` + cond + ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapErr("list products", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// GetNames nombres por id (incluye eliminados, para mostrar órdenes históricas).
func (r *ProductRepo) GetNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := r.q.Query(ctx, `SELECT id, name FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, wrapErr("get product names", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan product name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

// nonNilStrings evita insertar NULL en columnas TEXT[] NOT NULL.
func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
