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

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, COALESCE(invoice_id, ''), status, total, discount, cashier_id, partsman_id, created_at, updated_at`

// OrderRepo órdenes y sus ítems sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var status string
	if err := row.Scan(&o.ID, &o.InvoiceID, &status, &o.Total, &o.Discount,
		&o.CashierID, &o.PartsmanID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	return &o, nil
}

// nullableInvoice el invoice id vacío se guarda como NULL para no chocar con el índice único.
func nullableInvoice(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// Create inserta la orden. Si el invoice id ya existe, la orden se guarda sin él.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) (bool, error) {
	insert := func(invoiceID *string) (int64, error) {
		cmd, err := r.q.Exec(ctx, `
			INSERT INTO orders (id, invoice_id, status, total, discount, cashier_id, partsman_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (invoice_id) DO NOTHING`,
			order.ID, invoiceID, string(order.Status), order.Total, order.Discount,
			order.CashierID, order.PartsmanID, order.CreatedAt, order.UpdatedAt,
		)
		if err != nil {
			return 0, err
		}
		return cmd.RowsAffected(), nil
	}

	assigned := order.InvoiceID != ""
	n, err := insert(nullableInvoice(order.InvoiceID))
	if err == nil && n == 0 {
		assigned = false
		n, err = insert(nil)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return false, domain.ErrDuplicate
		}
		return false, wrapErr("insert order", err)
	}
	if n == 0 {
		return false, domain.ErrDuplicate
	}

	if err := r.insertItems(ctx, order.ID, order.Items); err != nil {
		return false, err
	}
	return assigned, nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila de la orden hasta el fin de la transacción.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderRepo) get(ctx context.Context, query, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get order", err)
	}
	items, err := r.itemsOf(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// Update reemplaza estado, ítems y metadatos. El invoice id no se modifica.
func (r *OrderRepo) Update(ctx context.Context, order *entity.Order) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE orders SET status = $2, total = $3, discount = $4, cashier_id = $5, partsman_id = $6, updated_at = $7
		WHERE id = $1`,
		order.ID, string(order.Status), order.Total, order.Discount,
		order.CashierID, order.PartsmanID, order.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update order", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, order.ID)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return wrapErr("delete order items", err)
	}
	return r.insertItems(ctx, order.ID, order.Items)
}

// List más recientes primero; la búsqueda es sobre el invoice id.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "invoice_id ILIKE "+arg("%"+s+"%"))
	}
	if f.CashierID != "" {
		where = append(where, "cashier_id = "+arg(f.CashierID))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, wrapErr("count orders", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + cond + ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}
	list, err := r.listWithItems(ctx, query, args...)
	return list, total, err
}

// ListMissingInvoice órdenes sin invoice id, las más antiguas primero.
func (r *OrderRepo) ListMissingInvoice(ctx context.Context, limit, offset int) ([]*entity.Order, error) {
	return r.listWithItems(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE invoice_id IS NULL
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2`, limit, offset)
}

// AssignInvoiceID asigna solo si la orden no tiene id y el valor está libre.
func (r *OrderRepo) AssignInvoiceID(ctx context.Context, orderID, invoiceID string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE orders SET invoice_id = $2
		WHERE id = $1 AND invoice_id IS NULL
		  AND NOT EXISTS (SELECT 1 FROM orders WHERE invoice_id = $2)`,
		orderID, invoiceID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, wrapErr("assign invoice id", err)
	}
	if cmd.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return false, wrapErr("assign invoice id", err)
	}
	if !exists {
		return false, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	return false, nil
}

func (r *OrderRepo) listWithItems(ctx context.Context, query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list orders", err)
	}
	var (
		list []*entity.Order
		ids  []string
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list orders", err)
	}

	items, err := r.itemsOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		o.Items = items[o.ID]
	}
	return list, nil
}

func (r *OrderRepo) insertItems(ctx context.Context, orderID string, items []entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, it := range items {
		batch.Queue(`INSERT INTO order_items (order_id, line, product_id, count) VALUES ($1, $2, $3, $4)`,
			orderID, i, it.ProductID, it.Count)
	}
	br := r.q.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()
	for range items {
		if _, err := br.Exec(); err != nil {
			return wrapErr("insert order item", err)
		}
	}
	return nil
}

// itemsOf ítems de cada orden en el orden de línea original.
func (r *OrderRepo) itemsOf(ctx context.Context, orderIDs []string) (map[string][]entity.OrderItem, error) {
	out := make(map[string][]entity.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT order_id, product_id, count FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, line`, orderIDs)
	if err != nil {
		return nil, wrapErr("load order items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var orderID string
		var it entity.OrderItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.Count); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}
