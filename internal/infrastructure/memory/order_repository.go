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

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación en memoria de OrderRepository.
type OrderRepo struct {
	b binding
}

// NewOrderRepository repositorio sobre el último estado confirmado.
func NewOrderRepository(s *Store) *OrderRepo {
	return &OrderRepo{b: binding{store: s}}
}

// Create emula INSERT ... ON CONFLICT (invoice_id) DO NOTHING con reintento sin invoice id.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) (bool, error) {
	assigned := false
	err := r.b.write(ctx, func(st *state) error {
		if _, ok := st.orders[order.ID]; ok {
			return domain.ErrDuplicate
		}
		o := order.Clone()
		if o.InvoiceID != "" {
			if _, taken := st.invoices[o.InvoiceID]; taken {
				o.InvoiceID = ""
			} else {
				st.invoices[o.InvoiceID] = o.ID
				assigned = true
			}
		}
		st.orders[o.ID] = o
		return nil
	})
	return assigned, err
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.b.read(ctx, func(st *state) error {
		out = st.orders[id].Clone()
		return nil
	})
	return out, err
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) Update(ctx context.Context, order *entity.Order) error {
	return r.b.write(ctx, func(st *state) error {
		o, ok := st.orders[order.ID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, order.ID)
		}
		o.Items = entity.CopyItems(order.Items)
		o.Status = order.Status
		o.Total = order.Total
		o.Discount = order.Discount
		o.CashierID = order.CashierID
		o.PartsmanID = order.PartsmanID
		o.UpdatedAt = order.UpdatedAt
		return nil
	})
}

func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	var (
		list  []*entity.Order
		total int
	)
	err := r.b.read(ctx, func(st *state) error {
		search := strings.ToLower(strings.TrimSpace(f.Search))
		var matched []*entity.Order
		for _, o := range st.orders {
			if f.CashierID != "" && o.CashierID != f.CashierID {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(o.InvoiceID), search) {
				continue
			}
			matched = append(matched, o)
		}
		sortOrders(matched, true)
		total = len(matched)
		from, to := paginate(total, f.Limit, f.Offset)
		for _, o := range matched[from:to] {
			list = append(list, o.Clone())
		}
		return nil
	})
	return list, total, err
}

func (r *OrderRepo) ListMissingInvoice(ctx context.Context, limit, offset int) ([]*entity.Order, error) {
	var list []*entity.Order
	err := r.b.read(ctx, func(st *state) error {
		var missing []*entity.Order
		for _, o := range st.orders {
			if o.InvoiceID == "" {
				missing = append(missing, o)
			}
		}
		sortOrders(missing, false)
		from, to := paginate(len(missing), limit, offset)
		for _, o := range missing[from:to] {
			list = append(list, o.Clone())
		}
		return nil
	})
	return list, err
}

func (r *OrderRepo) AssignInvoiceID(ctx context.Context, orderID, invoiceID string) (bool, error) {
	assigned := false
	err := r.b.write(ctx, func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
		}
		if o.InvoiceID != "" {
			return nil
		}
		if _, taken := st.invoices[invoiceID]; taken {
			return nil
		}
		o.InvoiceID = invoiceID
		st.invoices[invoiceID] = orderID
		assigned = true
		return nil
	})
	return assigned, err
}

// sortOrders por fecha de creación (desc si newestFirst) y luego por id.
func sortOrders(list []*entity.Order, newestFirst bool) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if newestFirst {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
