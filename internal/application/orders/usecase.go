// Package orders contiene el caso de uso del ciclo de vida de las órdenes de venta:
// creación, actualización, cancelación y devolución con sus efectos de stock,
// todo dentro de un único ámbito atómico por operación.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/lifecycle"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

const tracerName = "github.com/jhoicas/pos-ledger/orders"

// IdempotencyGuard registra claves de idempotencia de creación de órdenes.
type IdempotencyGuard interface {
	// Reserve marca la clave como en curso. Si la clave ya produjo una orden devuelve
	// su ID; si otra petición la tiene en curso devuelve reserved=false sin ID.
	Reserve(ctx context.Context, key string) (existingOrderID string, reserved bool, err error)
	Complete(ctx context.Context, key, orderID string) error
	Release(ctx context.Context, key string) error
}

// UseCase orquesta el ciclo de vida de las órdenes.
// Es el único que invoca al StockLedger como parte de un evento de orden.
type UseCase struct {
	txRunner  inventory.TxRunner
	orderRepo repository.OrderRepository
	ledger    *inventory.StockLedger
	guard     IdempotencyGuard
	log       *logger.Logger
	tracer    trace.Tracer
	now       func() time.Time
	newID     func() string
}

// Option configura el caso de uso.
type Option func(*UseCase)

// WithIdempotencyGuard activa las claves de idempotencia en Create.
func WithIdempotencyGuard(g IdempotencyGuard) Option {
	return func(uc *UseCase) { uc.guard = g }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) { uc.now = now }
}

// WithIDGenerator reemplaza el generador de IDs de orden (tests).
func WithIDGenerator(fn func() string) Option {
	return func(uc *UseCase) { uc.newID = fn }
}

// NewUseCase construye el caso de uso. orderRepo se usa para lecturas fuera de transacción.
func NewUseCase(
	txRunner inventory.TxRunner,
	orderRepo repository.OrderRepository,
	ledger *inventory.StockLedger,
	log *logger.Logger,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		txRunner:  txRunner,
		orderRepo: orderRepo,
		ledger:    ledger,
		log:       log.Component("orders"),
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Create valida la orden, descuenta el stock de cada ítem y persiste la orden con su
// invoice id, todo en una sola transacción.
//
// Retorna:
//   - domain.ErrInvalidInput       si la entrada está mal formada (antes de tocar datos).
//   - domain.ErrProductNotFound    si algún producto no existe o está eliminado.
//   - domain.ErrInsufficientStock  (*domain.InsufficientStockError) si falta stock.
//   - domain.ErrConflict           si la misma clave de idempotencia está en curso.
func (uc *UseCase) Create(ctx context.Context, cashierID string, in dto.CreateOrderRequest, idempotencyKey string) (out *dto.OrderResponse, err error) {
	ctx, span := uc.tracer.Start(ctx, "orders.Create")
	defer func() { finishSpan(span, err) }()

	status := entity.OrderStatus(in.Status)
	if status == "" {
		status = entity.OrderReserved
	}
	if !lifecycle.IsInitial(status) {
		return nil, fmt.Errorf("%w: una orden solo se crea como reserved o completed", domain.ErrInvalidInput)
	}
	if cashierID == "" {
		return nil, fmt.Errorf("%w: cajero requerido", domain.ErrInvalidInput)
	}
	items, err := toItems(in.Items, true)
	if err != nil {
		return nil, err
	}
	if err := validateAmounts(&in.Total, &in.Discount); err != nil {
		return nil, err
	}

	if idempotencyKey != "" && uc.guard != nil {
		idempotencyKey = ScopedIdempotencyKey(cashierID, idempotencyKey)
		existingID, reserved, gErr := uc.guard.Reserve(ctx, idempotencyKey)
		switch {
		case gErr != nil:
			// Sin guardia disponible la orden se crea igual; el reintento queda a cargo del cliente.
			uc.log.Warn().Err(gErr).Str("idempotency_key", idempotencyKey).Msg("guardia de idempotencia no disponible")
			idempotencyKey = ""
		case existingID != "":
			span.SetAttributes(attribute.Bool("order.replayed", true))
			return uc.Get(ctx, existingID)
		case !reserved:
			return nil, fmt.Errorf("%w: petición con la misma clave de idempotencia en curso", domain.ErrConflict)
		}
	} else {
		idempotencyKey = ""
	}

	now := uc.now()
	order := &entity.Order{
		ID:         uc.newID(),
		Items:      items,
		Status:     status,
		Total:      in.Total,
		Discount:   in.Discount,
		CashierID:  cashierID,
		PartsmanID: in.PartsmanID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if invoiceID, idErr := lifecycle.InvoiceID(order.ID); idErr == nil {
		order.InvoiceID = invoiceID
	} else {
		uc.log.Warn().Err(idErr).Str("order_id", order.ID).Msg("no se pudo derivar invoice id; queda para el backfill")
	}
	span.SetAttributes(attribute.String("order.id", order.ID), attribute.String("order.status", string(status)))

	err = uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, orderRepo repository.OrderRepository) error {
		if _, err := uc.ledger.Apply(ctx, productRepo, inventory.SaleDeltas(order.Items)); err != nil {
			return err
		}
		assigned, err := orderRepo.Create(ctx, order)
		if err != nil {
			return fmt.Errorf("crear orden: %w", err)
		}
		if !assigned && order.InvoiceID != "" {
			uc.log.Warn().Str("order_id", order.ID).Str("invoice_id", order.InvoiceID).Msg("invoice id en uso; la orden se guarda sin él")
			order.InvoiceID = ""
		}
		return nil
	})
	if err != nil {
		if idempotencyKey != "" {
			if rErr := uc.guard.Release(ctx, idempotencyKey); rErr != nil {
				uc.log.Warn().Err(rErr).Str("idempotency_key", idempotencyKey).Msg("liberar clave de idempotencia")
			}
		}
		uc.logFailure("create", order.ID, err)
		return nil, err
	}
	if idempotencyKey != "" {
		if cErr := uc.guard.Complete(ctx, idempotencyKey, order.ID); cErr != nil {
			uc.log.Warn().Err(cErr).Str("idempotency_key", idempotencyKey).Msg("registrar clave de idempotencia")
		}
	}

	uc.log.Info().
		Str("order_id", order.ID).
		Str("invoice_id", order.InvoiceID).
		Str("status", string(order.Status)).
		Int("items", len(order.Items)).
		Msg("orden creada")
	return toOrderResponse(order), nil
}

// ScopedIdempotencyKey clave efectiva en la guardia: cada cajero tiene su propio
// espacio de claves, así un cajero nunca recibe la orden de otro.
func ScopedIdempotencyKey(cashierID, key string) string {
	return cashierID + ":" + key
}

// Update aplica un cambio de estado y/o metadatos.
//
//   - Mismo estado: solo metadatos (total, descuento, partsman); en estados terminales nada.
//   - reserved -> completed con ítems distintos: revierte los originales y descuenta los
//     nuevos (neto por producto) antes de guardar el nuevo estado y la nueva lista.
//   - reserved -> completed sin cambio de ítems: solo estado y metadatos.
//   - hacia cancelled o returned: solo estado y metadatos, sin movimiento de stock.
//     Para reponer stock se usan Cancel / Return.
//   - cualquier otra transición: domain.ErrIllegalTransition.
func (uc *UseCase) Update(ctx context.Context, orderID string, in dto.UpdateOrderRequest) (out *dto.OrderResponse, err error) {
	ctx, span := uc.tracer.Start(ctx, "orders.Update", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer func() { finishSpan(span, err) }()

	target := entity.OrderStatus(in.Status)
	if target != "" && !target.Valid() {
		return nil, fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, in.Status)
	}
	var newItems []entity.OrderItem
	if in.Items != nil {
		if newItems, err = toItems(in.Items, true); err != nil {
			return nil, err
		}
	}
	if err := validateAmounts(in.Total, in.Discount); err != nil {
		return nil, err
	}

	var (
		result   *entity.Order
		adjusted bool
	)
	err = uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, orderRepo repository.OrderRepository) error {
		current, err := orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("obtener orden: %w", err)
		}
		if current == nil {
			return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
		}
		to := target
		if to == "" {
			to = current.Status
		}
		if err := lifecycle.ValidateTransition(current.Status, to); err != nil {
			return err
		}

		if to == current.Status {
			if lifecycle.IsTerminal(to) {
				result = current
				return nil
			}
			applyMetadata(current, in)
		} else {
			// Solo la entrada a completed con ítems distintos toca el stock; hacia
			// cancelled o returned Update escribe estado y metadatos (la reposición es de Cancel / Return).
			if to == entity.OrderCompleted {
				if newItems != nil && lifecycle.ItemsChanged(current.Items, newItems) {
					deltas := append(inventory.ReversalDeltas(current.Items), inventory.SaleDeltas(newItems)...)
					if _, err := uc.ledger.Apply(ctx, productRepo, deltas); err != nil {
						return err
					}
					current.Items = newItems
					adjusted = true
				}
			}
			current.Status = to
			applyMetadata(current, in)
		}
		current.UpdatedAt = uc.now()
		if err := orderRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("actualizar orden: %w", err)
		}
		result = current
		return nil
	})
	if err != nil {
		uc.logFailure("update", orderID, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("order.status", string(result.Status)), attribute.Bool("order.stock_adjusted", adjusted))
	uc.log.Info().
		Str("order_id", result.ID).
		Str("status", string(result.Status)).
		Bool("stock_adjusted", adjusted).
		Msg("orden actualizada")
	return toOrderResponse(result), nil
}

// Cancel revierte el stock de una orden reservada y la marca como cancelled.
// domain.ErrAlreadyCancelled si ya estaba cancelada; domain.ErrIllegalTransition desde otro estado.
func (uc *UseCase) Cancel(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	return uc.reverse(ctx, "orders.Cancel", orderID, entity.OrderCancelled, lifecycle.ValidateCancel)
}

// Return revierte el stock de una orden completada y la marca como returned.
// domain.ErrAlreadyReturned si ya estaba devuelta; domain.ErrIllegalTransition desde otro estado.
func (uc *UseCase) Return(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	return uc.reverse(ctx, "orders.Return", orderID, entity.OrderReturned, lifecycle.ValidateReturn)
}

func (uc *UseCase) reverse(
	ctx context.Context,
	spanName, orderID string,
	to entity.OrderStatus,
	validate func(entity.OrderStatus) error,
) (out *dto.OrderResponse, err error) {
	ctx, span := uc.tracer.Start(ctx, spanName, trace.WithAttributes(attribute.String("order.id", orderID)))
	defer func() { finishSpan(span, err) }()

	var result *entity.Order
	err = uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, orderRepo repository.OrderRepository) error {
		current, err := orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("obtener orden: %w", err)
		}
		if current == nil {
			return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
		}
		if err := validate(current.Status); err != nil {
			return err
		}
		if _, err := uc.ledger.Apply(ctx, productRepo, inventory.ReversalDeltas(current.Items)); err != nil {
			return err
		}
		current.Status = to
		current.UpdatedAt = uc.now()
		if err := orderRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("actualizar orden: %w", err)
		}
		result = current
		return nil
	})
	if err != nil {
		uc.logFailure(string(to), orderID, err)
		return nil, err
	}
	uc.log.Info().Str("order_id", orderID).Str("status", string(to)).Msg("stock revertido")
	return toOrderResponse(result), nil
}

// Get obtiene una orden por ID.
func (uc *UseCase) Get(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	o, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("obtener orden: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	return toOrderResponse(o), nil
}

// List lista órdenes (más recientes primero) con búsqueda por invoice id.
// cashierID vacío lista las de todos los cajeros.
func (uc *UseCase) List(ctx context.Context, cashierID, search string, page dto.PageRequest) (*dto.OrderListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.orderRepo.List(ctx, repository.OrderFilter{
		Search:    search,
		CashierID: cashierID,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listar órdenes: %w", err)
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// ListByCashier órdenes de un cajero ("mis órdenes").
func (uc *UseCase) ListByCashier(ctx context.Context, cashierID, search string, page dto.PageRequest) (*dto.OrderListResponse, error) {
	if cashierID == "" {
		return nil, fmt.Errorf("%w: cajero requerido", domain.ErrInvalidInput)
	}
	return uc.List(ctx, cashierID, search, page)
}

// logFailure los rechazos de negocio van a warn; el resto a error.
func (uc *UseCase) logFailure(op, orderID string, err error) {
	ev := uc.log.Error()
	if isBusinessError(err) {
		ev = uc.log.Warn()
	}
	ev.Err(err).Str("op", op).Str("order_id", orderID).Msg("operación de orden rechazada")
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput, domain.ErrNotFound, domain.ErrInsufficientStock,
		domain.ErrIllegalTransition, domain.ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func toItems(in []dto.OrderItemDTO, required bool) ([]entity.OrderItem, error) {
	if required && len(in) == 0 {
		return nil, fmt.Errorf("%w: la orden requiere al menos un ítem", domain.ErrInvalidInput)
	}
	out := make([]entity.OrderItem, 0, len(in))
	for i, it := range in {
		if it.ProductID == "" {
			return nil, fmt.Errorf("%w: ítem %d sin producto", domain.ErrInvalidInput, i)
		}
		if it.Count < 1 {
			return nil, fmt.Errorf("%w: ítem %d con cantidad %d (mínimo 1)", domain.ErrInvalidInput, i, it.Count)
		}
		out = append(out, entity.OrderItem{ProductID: it.ProductID, Count: it.Count})
	}
	return out, nil
}

var one = decimal.NewFromInt(1)

func validateAmounts(total, discount *decimal.Decimal) error {
	if total != nil && total.IsNegative() {
		return fmt.Errorf("%w: total negativo", domain.ErrInvalidInput)
	}
	if discount != nil && (discount.IsNegative() || discount.GreaterThan(one)) {
		return fmt.Errorf("%w: el descuento debe estar en [0,1]", domain.ErrInvalidInput)
	}
	return nil
}

func applyMetadata(o *entity.Order, in dto.UpdateOrderRequest) {
	if in.Total != nil {
		o.Total = *in.Total
	}
	if in.Discount != nil {
		o.Discount = *in.Discount
	}
	if in.PartsmanID != nil {
		o.PartsmanID = *in.PartsmanID
	}
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemDTO{ProductID: it.ProductID, Count: it.Count})
	}
	return &dto.OrderResponse{
		ID:         o.ID,
		InvoiceID:  o.InvoiceID,
		Items:      items,
		Status:     string(o.Status),
		Total:      o.Total,
		Discount:   o.Discount,
		CashierID:  o.CashierID,
		PartsmanID: o.PartsmanID,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}
