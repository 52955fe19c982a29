// Package sku implementa el canonicalizador de SKUs compuestos: deduplica fragmentos
// posicionales y combinaciones completas, con una caché opcional de búsqueda.
package sku

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	domainsku "github.com/jhoicas/pos-ledger/internal/domain/sku"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

// Cache caché de búsqueda: clave de valores ordenados -> id de SKU canónico.
// Es best-effort: sus errores se registran y no afectan el resultado.
type Cache interface {
	Get(ctx context.Context, key string) (id string, found bool, err error)
	Set(ctx context.Context, key, id string) error
	Delete(ctx context.Context, keys ...string) error
}

// UseCase canonicalizador de SKUs.
type UseCase struct {
	txRunner inventory.CatalogTxRunner
	skuRepo  repository.SKURepository
	cache    Cache
	log      *logger.Logger
	tracer   trace.Tracer
}

// NewUseCase construye el caso de uso. cache puede ser nil.
func NewUseCase(txRunner inventory.CatalogTxRunner, skuRepo repository.SKURepository, cache Cache, log *logger.Logger) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		skuRepo:  skuRepo,
		cache:    cache,
		log:      log.Component("sku"),
		tracer:   otel.Tracer("github.com/jhoicas/pos-ledger/sku"),
	}
}

func cacheKey(values []string) string {
	return "sku:" + domainsku.LookupKey(values)
}

// Canonicalize devuelve el SKU canónico de la cadena "ENG-100-A", creando fragmentos y
// registro solo si no existen. Una cadena vacía devuelve (nil, false, nil).
func (uc *UseCase) Canonicalize(ctx context.Context, raw string) (*entity.CanonicalSKU, bool, error) {
	values, err := domainsku.Split(raw)
	if err != nil {
		return nil, false, err
	}
	return uc.canonicalize(ctx, values)
}

// CanonicalizeFragments igual que Canonicalize con los fragmentos ya separados.
func (uc *UseCase) CanonicalizeFragments(ctx context.Context, fragments []string) (*entity.CanonicalSKU, bool, error) {
	values, err := domainsku.Normalize(fragments)
	if err != nil {
		return nil, false, err
	}
	return uc.canonicalize(ctx, values)
}

func (uc *UseCase) canonicalize(ctx context.Context, values []string) (out *entity.CanonicalSKU, created bool, err error) {
	if len(values) == 0 {
		return nil, false, nil
	}
	ctx, span := uc.tracer.Start(ctx, "sku.Canonicalize", trace.WithAttributes(attribute.Int("sku.fragments", len(values))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	key := cacheKey(values)
	if hit := uc.fromCache(ctx, key); hit != nil {
		span.SetAttributes(attribute.Bool("sku.cache_hit", true))
		return hit, false, nil
	}

	err = uc.txRunner.RunCatalog(ctx, func(skuRepo repository.SKURepository, _ repository.ProductRepository) error {
		var rErr error
		out, created, rErr = Resolve(ctx, skuRepo, values)
		return rErr
	})
	if err != nil {
		return nil, false, err
	}
	uc.remember(ctx, key, out.ID)
	if created {
		uc.log.Info().Str("sku_id", out.ID).Str("sku", domainsku.Display(out.Fragments)).Msg("sku canónico creado")
	}
	return out, created, nil
}

// Resolve algoritmo de canonicalización sobre el repositorio de una transacción abierta.
// Lo usan también los casos de uso de catálogo para resolver el SKU de un producto en
// la misma transacción que lo guarda. values ya debe estar normalizado.
func Resolve(ctx context.Context, skuRepo repository.SKURepository, values []string) (*entity.CanonicalSKU, bool, error) {
	fragments := make([]entity.SKUFragment, 0, len(values))
	ids := make([]string, 0, len(values))
	for i, v := range values {
		f, err := skuRepo.UpsertFragment(ctx, i, v)
		if err != nil {
			return nil, false, fmt.Errorf("fragmento %d: %w", i, err)
		}
		fragments = append(fragments, *f)
		ids = append(ids, f.ID)
	}
	c, created, err := skuRepo.UpsertCanonical(ctx, domainsku.ContentKey(ids), fragments)
	if err != nil {
		return nil, false, fmt.Errorf("sku canónico: %w", err)
	}
	return c, created, nil
}

// Exists indica si ya existe un SKU canónico para la cadena. No crea registros.
func (uc *UseCase) Exists(ctx context.Context, raw string) (bool, error) {
	c, err := uc.Check(ctx, raw)
	return c != nil, err
}

// Check devuelve el SKU canónico que coincide con la cadena, o nil. No crea registros.
func (uc *UseCase) Check(ctx context.Context, raw string) (*entity.CanonicalSKU, error) {
	values, err := domainsku.Split(raw)
	if err != nil || len(values) == 0 {
		return nil, err
	}
	key := cacheKey(values)
	if hit := uc.fromCache(ctx, key); hit != nil {
		return hit, nil
	}
	ids := make([]string, 0, len(values))
	for i, v := range values {
		f, err := uc.skuRepo.FindFragment(ctx, i, v)
		if err != nil {
			return nil, fmt.Errorf("buscar fragmento: %w", err)
		}
		if f == nil {
			return nil, nil
		}
		ids = append(ids, f.ID)
	}
	c, err := uc.skuRepo.FindCanonicalByKey(ctx, domainsku.ContentKey(ids))
	if err != nil {
		return nil, fmt.Errorf("buscar sku: %w", err)
	}
	if c != nil {
		uc.remember(ctx, key, c.ID)
	}
	return c, nil
}

// Get obtiene un SKU canónico por ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.CanonicalSKU, error) {
	c, err := uc.skuRepo.GetCanonical(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener sku: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSKUNotFound, id)
	}
	return c, nil
}

// List lista los SKUs canónicos con su representación textual.
func (uc *UseCase) List(ctx context.Context, page dto.PageRequest) (*dto.SKUListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.skuRepo.ListCanonical(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar skus: %w", err)
	}
	items := make([]dto.SKUResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *ToResponse(c, false))
	}
	return &dto.SKUListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// BulkCreate canonicaliza cada entrada en su propia transacción. Un error en una
// entrada se informa en su resultado y no interrumpe las demás.
func (uc *UseCase) BulkCreate(ctx context.Context, raws []string) ([]dto.BulkSKUResult, error) {
	if len(raws) == 0 {
		return nil, fmt.Errorf("%w: lista de SKUs vacía", domain.ErrInvalidInput)
	}
	out := make([]dto.BulkSKUResult, 0, len(raws))
	for _, raw := range raws {
		res := dto.BulkSKUResult{Input: raw}
		c, created, err := uc.Canonicalize(ctx, raw)
		switch {
		case err != nil:
			res.Error = err.Error()
		case c == nil:
			res.Error = "sku vacío"
		default:
			res.ID = c.ID
			res.Created = created
		}
		out = append(out, res)
	}
	return out, nil
}

// Update reasigna el SKU a una nueva secuencia de fragmentos.
// domain.ErrDuplicate si otro SKU ya tiene esa combinación.
func (uc *UseCase) Update(ctx context.Context, id, raw string) (*entity.CanonicalSKU, error) {
	values, err := domainsku.Split(raw)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: sku vacío", domain.ErrInvalidInput)
	}
	var (
		oldValues []string
		updated   *entity.CanonicalSKU
	)
	err = uc.txRunner.RunCatalog(ctx, func(skuRepo repository.SKURepository, _ repository.ProductRepository) error {
		current, err := skuRepo.GetCanonical(ctx, id)
		if err != nil {
			return fmt.Errorf("obtener sku: %w", err)
		}
		if current == nil {
			return fmt.Errorf("%w: %s", domain.ErrSKUNotFound, id)
		}
		oldValues = current.Values()

		fragments := make([]entity.SKUFragment, 0, len(values))
		ids := make([]string, 0, len(values))
		for i, v := range values {
			f, err := skuRepo.UpsertFragment(ctx, i, v)
			if err != nil {
				return fmt.Errorf("fragmento %d: %w", i, err)
			}
			fragments = append(fragments, *f)
			ids = append(ids, f.ID)
		}
		if err := skuRepo.UpdateCanonical(ctx, id, domainsku.ContentKey(ids), fragments); err != nil {
			return err
		}
		updated, err = skuRepo.GetCanonical(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.forget(ctx, cacheKey(oldValues), cacheKey(values))
	uc.log.Info().Str("sku_id", id).Str("sku", domainsku.Display(updated.Fragments)).Msg("sku actualizado")
	return updated, nil
}

// Delete elimina el SKU canónico. Los productos que lo referenciaban quedan sin SKU.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	var oldValues []string
	err := uc.txRunner.RunCatalog(ctx, func(skuRepo repository.SKURepository, _ repository.ProductRepository) error {
		current, err := skuRepo.GetCanonical(ctx, id)
		if err != nil {
			return fmt.Errorf("obtener sku: %w", err)
		}
		if current == nil {
			return fmt.Errorf("%w: %s", domain.ErrSKUNotFound, id)
		}
		oldValues = current.Values()
		return skuRepo.DeleteCanonical(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.forget(ctx, cacheKey(oldValues))
	uc.log.Info().Str("sku_id", id).Msg("sku eliminado")
	return nil
}

// FragmentsByPosition fragmentos conocidos en una posición (sugerencias de captura).
func (uc *UseCase) FragmentsByPosition(ctx context.Context, position int) ([]dto.SKUFragmentResponse, error) {
	if position < 0 {
		return nil, fmt.Errorf("%w: posición negativa", domain.ErrInvalidInput)
	}
	list, err := uc.skuRepo.FragmentsByPosition(ctx, position)
	if err != nil {
		return nil, fmt.Errorf("listar fragmentos: %w", err)
	}
	out := make([]dto.SKUFragmentResponse, 0, len(list))
	for _, f := range list {
		out = append(out, dto.SKUFragmentResponse{ID: f.ID, Position: f.Position, Value: f.Value})
	}
	return out, nil
}

// fromCache devuelve el SKU cacheado si la entrada sigue apuntando a un registro vivo.
func (uc *UseCase) fromCache(ctx context.Context, key string) *entity.CanonicalSKU {
	if uc.cache == nil {
		return nil
	}
	id, found, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.log.Warn().Err(err).Msg("caché de sku no disponible")
		return nil
	}
	if !found {
		return nil
	}
	c, err := uc.skuRepo.GetCanonical(ctx, id)
	if err != nil || c == nil {
		uc.forget(ctx, key)
		return nil
	}
	return c
}

func (uc *UseCase) remember(ctx context.Context, key, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Set(ctx, key, id); err != nil {
		uc.log.Warn().Err(err).Msg("guardar en caché de sku")
	}
}

func (uc *UseCase) forget(ctx context.Context, keys ...string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, keys...); err != nil {
		uc.log.Warn().Err(err).Msg("invalidar caché de sku")
	}
}

// ToResponse convierte un SKU canónico al DTO de respuesta.
func ToResponse(c *entity.CanonicalSKU, created bool) *dto.SKUResponse {
	frags := make([]dto.SKUFragmentResponse, 0, len(c.Fragments))
	for _, f := range c.Fragments {
		frags = append(frags, dto.SKUFragmentResponse{ID: f.ID, Position: f.Position, Value: f.Value})
	}
	return &dto.SKUResponse{
		ID:        c.ID,
		SKU:       domainsku.Display(c.Fragments),
		Fragments: frags,
		Created:   created,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
