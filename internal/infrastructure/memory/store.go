// Package memory implementa los puertos de persistencia en memoria con la misma
// semántica de ámbito atómico que PostgreSQL: las escrituras se serializan, trabajan
// sobre una copia del estado y solo se publican si la función termina sin error.
// Los lectores ven siempre un estado confirmado completo.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)
var _ inventory.CatalogTxRunner = (*Store)(nil)

type fragmentKey struct {
	position int
	value    string
}

// state estado completo. Un estado publicado nunca se modifica.
type state struct {
	products  map[string]*entity.Product
	fragments map[string]*entity.SKUFragment
	fragByKey map[fragmentKey]string
	skus      map[string]*entity.CanonicalSKU
	skuByKey  map[string]string
	orders    map[string]*entity.Order
	invoices  map[string]string // invoice id -> order id
}

func newState() *state {
	return &state{
		products:  map[string]*entity.Product{},
		fragments: map[string]*entity.SKUFragment{},
		fragByKey: map[fragmentKey]string{},
		skus:      map[string]*entity.CanonicalSKU{},
		skuByKey:  map[string]string{},
		orders:    map[string]*entity.Order{},
		invoices:  map[string]string{},
	}
}

func (s *state) clone() *state {
	c := &state{
		products:  make(map[string]*entity.Product, len(s.products)),
		fragments: make(map[string]*entity.SKUFragment, len(s.fragments)),
		fragByKey: make(map[fragmentKey]string, len(s.fragByKey)),
		skus:      make(map[string]*entity.CanonicalSKU, len(s.skus)),
		skuByKey:  make(map[string]string, len(s.skuByKey)),
		orders:    make(map[string]*entity.Order, len(s.orders)),
		invoices:  make(map[string]string, len(s.invoices)),
	}
	for k, v := range s.products {
		c.products[k] = v.Clone()
	}
	for k, v := range s.fragments {
		f := *v
		c.fragments[k] = &f
	}
	for k, v := range s.fragByKey {
		c.fragByKey[k] = v
	}
	for k, v := range s.skus {
		c.skus[k] = v.Clone()
	}
	for k, v := range s.skuByKey {
		c.skuByKey[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v.Clone()
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	return c
}

// Store almacén en memoria. Implementa inventory.TxRunner e inventory.CatalogTxRunner.
type Store struct {
	writeMu     sync.Mutex   // serializa las transacciones de escritura
	mu          sync.RWMutex // protege cur
	cur         *state
	unavailable atomic.Bool
	now         func() time.Time // protegido por writeMu
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{cur: newState(), now: time.Now}
}

// SetUnavailable simula una caída del almacenamiento: toda operación falla con
// domain.ErrStorageUnavailable hasta que se restablezca.
func (s *Store) SetUnavailable(v bool) {
	s.unavailable.Store(v)
}

// SetClock reemplaza el reloj usado para las marcas updated_at. El reloj solo se
// lee dentro de update, así que writeMu basta para sincronizar el cambio.
func (s *Store) SetClock(now func() time.Time) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.now = now
}

func (s *Store) snapshot() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *Store) check(ctx context.Context) error {
	if s.unavailable.Load() {
		return fmt.Errorf("%w: almacén en memoria fuera de servicio", domain.ErrStorageUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// update ejecuta fn sobre una copia del estado y la publica si no hay error.
func (s *Store) update(ctx context.Context, fn func(st *state) error) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.snapshot().clone()
	if err := fn(next); err != nil {
		return err
	}
	// Un fallo de "commit" descarta la copia igual que un Rollback.
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()
	return nil
}

// Run ejecuta fn con repositorios atados a una transacción.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return s.update(ctx, func(st *state) error {
		b := binding{store: s, tx: st}
		return fn(&ProductRepo{b: b}, &OrderRepo{b: b})
	})
}

// RunCatalog ejecuta fn con repositorios de catálogo atados a una transacción.
func (s *Store) RunCatalog(ctx context.Context, fn func(
	skuRepo repository.SKURepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.update(ctx, func(st *state) error {
		b := binding{store: s, tx: st}
		return fn(&SKURepo{b: b}, &ProductRepo{b: b})
	})
}

// binding ata un repositorio al estado de una transacción o, si tx es nil, al
// último estado confirmado (cada escritura es entonces su propia transacción).
type binding struct {
	store *Store
	tx    *state
}

func (b binding) read(ctx context.Context, fn func(st *state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	if err := b.store.check(ctx); err != nil {
		return err
	}
	return fn(b.store.snapshot())
}

func (b binding) write(ctx context.Context, fn func(st *state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	return b.store.update(ctx, fn)
}

func paginate(total, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return offset, end
}
