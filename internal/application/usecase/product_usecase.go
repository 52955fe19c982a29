package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	appsku "github.com/jhoicas/pos-ledger/internal/application/sku"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	domainsku "github.com/jhoicas/pos-ledger/internal/domain/sku"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

const maxVariants = 100

// ProductUseCase casos de uso CRUD para productos. Cantidad y estado se manejan
// exclusivamente vía StockLedger.
type ProductUseCase struct {
	txRunner    inventory.CatalogTxRunner
	productRepo repository.ProductRepository
	skuRepo     repository.SKURepository
	ledger      *inventory.StockLedger
	log         *logger.Logger
	now         func() time.Time
}

// NewProductUseCase construye el caso de uso. productRepo y skuRepo se usan para lecturas.
func NewProductUseCase(
	txRunner inventory.CatalogTxRunner,
	productRepo repository.ProductRepository,
	skuRepo repository.SKURepository,
	ledger *inventory.StockLedger,
	log *logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		skuRepo:     skuRepo,
		ledger:      ledger,
		log:         log.Component("products"),
		now:         time.Now,
	}
}

// Create crea un producto. El SKU se canonicaliza en la misma transacción y el stock
// inicial se fija a través del ledger para que el estado quede derivado desde el inicio.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
	}
	threshold := entity.DefaultQuantityThreshold
	if in.QuantityThreshold != nil {
		threshold = *in.QuantityThreshold
	}
	quantity := in.QuantityRemaining
	if quantity < 0 || threshold < 0 {
		return nil, fmt.Errorf("%w: cantidad y umbral deben ser >= 0", domain.ErrInvalidInput)
	}
	skuValues, err := domainsku.Split(in.SKU)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Brand:       in.Brand,
		Description: in.Description,
		Images:      in.Images,
		UniqueCode:  in.UniqueCode,
		PartNumber:  in.PartNumber,
		Price:       in.Price,
		Status:      entity.StockOutOfStock,
		Tags:        in.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.ParentID != "" {
		parentID := in.ParentID
		product.ParentID = &parentID
	}

	var canonical *entity.CanonicalSKU
	err = uc.txRunner.RunCatalog(ctx, func(skuRepo repository.SKURepository, productRepo repository.ProductRepository) error {
		if product.ParentID != nil {
			if err := validateParent(ctx, productRepo, product.ID, *product.ParentID); err != nil {
				return err
			}
		}
		if len(skuValues) > 0 {
			c, _, err := appsku.Resolve(ctx, skuRepo, skuValues)
			if err != nil {
				return err
			}
			canonical = c
			product.CanonicalSKUID = &c.ID
		}
		if err := productRepo.Create(ctx, product); err != nil {
			return fmt.Errorf("crear producto: %w", err)
		}
		p, err := uc.ledger.Reset(ctx, productRepo, product.ID, &quantity, &threshold)
		if err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", product.ID).Str("status", string(product.Status)).Msg("producto creado")
	return toProductResponse(product, canonical), nil
}

// GetByID obtiene un producto con su SKU y sus variantes.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	if p == nil || p.IsDeleted {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	skus := newSKUResolver(uc.skuRepo)
	out := toProductResponse(p, skus.get(ctx, p.CanonicalSKUID))

	if p.ParentID == nil {
		variants, _, err := uc.productRepo.List(ctx, repository.ProductFilter{ParentID: p.ID, Limit: maxVariants})
		if err != nil {
			return nil, fmt.Errorf("listar variantes: %w", err)
		}
		for _, v := range variants {
			out.Variants = append(out.Variants, *toProductResponse(v, skus.get(ctx, v.CanonicalSKUID)))
		}
	}
	return out, nil
}

// Update actualiza un producto. Cantidad y umbral pasan por el ledger dentro de la
// misma transacción que los datos descriptivos.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
	}
	var skuValues []string
	if in.SKU != nil {
		v, err := domainsku.Split(*in.SKU)
		if err != nil {
			return nil, err
		}
		skuValues = v
	}

	var (
		product   *entity.Product
		canonical *entity.CanonicalSKU
	)
	err := uc.txRunner.RunCatalog(ctx, func(skuRepo repository.SKURepository, productRepo repository.ProductRepository) error {
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("obtener producto: %w", err)
		}
		if p == nil || p.IsDeleted {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
		}
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Brand != nil {
			p.Brand = *in.Brand
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.Images != nil {
			p.Images = in.Images
		}
		if in.UniqueCode != nil {
			p.UniqueCode = *in.UniqueCode
		}
		if in.PartNumber != nil {
			p.PartNumber = *in.PartNumber
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.Tags != nil {
			p.Tags = in.Tags
		}
		if in.ParentID != nil {
			if *in.ParentID == "" {
				p.ParentID = nil
			} else {
				if err := validateParent(ctx, productRepo, p.ID, *in.ParentID); err != nil {
					return err
				}
				_, variants, err := productRepo.List(ctx, repository.ProductFilter{ParentID: p.ID, Limit: 1})
				if err != nil {
					return fmt.Errorf("listar variantes: %w", err)
				}
				if variants > 0 {
					return fmt.Errorf("%w: un producto con variantes no puede ser variante", domain.ErrInvalidInput)
				}
				parentID := *in.ParentID
				p.ParentID = &parentID
			}
		}
		if in.SKU != nil {
			if len(skuValues) == 0 {
				p.CanonicalSKUID = nil
			} else {
				c, _, err := appsku.Resolve(ctx, skuRepo, skuValues)
				if err != nil {
					return err
				}
				canonical = c
				p.CanonicalSKUID = &c.ID
			}
		}
		if err := productRepo.Update(ctx, p); err != nil {
			return fmt.Errorf("actualizar producto: %w", err)
		}
		if in.QuantityRemaining != nil || in.QuantityThreshold != nil {
			if p, err = uc.ledger.Reset(ctx, productRepo, p.ID, in.QuantityRemaining, in.QuantityThreshold); err != nil {
				return err
			}
		}
		if canonical == nil && p.CanonicalSKUID != nil {
			if canonical, err = skuRepo.GetCanonical(ctx, *p.CanonicalSKUID); err != nil {
				return fmt.Errorf("obtener sku: %w", err)
			}
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", id).Str("status", string(product.Status)).Msg("producto actualizado")
	return toProductResponse(product, canonical), nil
}

// List lista productos no eliminados con búsqueda y filtro de estado.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductListQuery) (*dto.ProductListResponse, error) {
	page := dto.PageRequest{Limit: q.Limit, Offset: q.Offset}
	page.DefaultPage()
	status := entity.StockStatus(q.Status)
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, q.Status)
	}
	list, total, err := uc.productRepo.List(ctx, repository.ProductFilter{
		Search:    q.Search,
		Status:    status,
		NoVariant: q.NoVariant,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	skus := newSKUResolver(uc.skuRepo)
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p, skus.get(ctx, p.CanonicalSKUID)))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Delete marca el producto como eliminado. Las órdenes históricas lo siguen referenciando.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.productRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("product_id", id).Msg("producto eliminado")
	return nil
}

// validateParent agrupación plana: el padre existe, no está eliminado y no es variante.
func validateParent(ctx context.Context, productRepo repository.ProductRepository, productID, parentID string) error {
	if parentID == productID {
		return fmt.Errorf("%w: un producto no puede ser su propio padre", domain.ErrInvalidInput)
	}
	parent, err := productRepo.GetByID(ctx, parentID)
	if err != nil {
		return fmt.Errorf("obtener padre: %w", err)
	}
	if parent == nil || parent.IsDeleted {
		return fmt.Errorf("%w: padre %s", domain.ErrProductNotFound, parentID)
	}
	if parent.ParentID != nil {
		return fmt.Errorf("%w: el padre ya es una variante", domain.ErrInvalidInput)
	}
	return nil
}

// skuResolver memoriza los SKUs ya consultados dentro de un listado.
type skuResolver struct {
	repo repository.SKURepository
	seen map[string]*entity.CanonicalSKU
}

func newSKUResolver(repo repository.SKURepository) *skuResolver {
	return &skuResolver{repo: repo, seen: map[string]*entity.CanonicalSKU{}}
}

func (r *skuResolver) get(ctx context.Context, id *string) *entity.CanonicalSKU {
	if id == nil {
		return nil
	}
	if c, ok := r.seen[*id]; ok {
		return c
	}
	c, err := r.repo.GetCanonical(ctx, *id)
	if err != nil {
		c = nil
	}
	r.seen[*id] = c
	return c
}

func toProductResponse(p *entity.Product, canonical *entity.CanonicalSKU) *dto.ProductResponse {
	out := &dto.ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		Brand:             p.Brand,
		Description:       p.Description,
		Images:            p.Images,
		UniqueCode:        p.UniqueCode,
		PartNumber:        p.PartNumber,
		Price:             p.Price,
		QuantityRemaining: p.QuantityRemaining,
		QuantitySold:      p.QuantitySold,
		QuantityThreshold: p.QuantityThreshold,
		Status:            string(p.Status),
		Tags:              p.Tags,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if out.Images == nil {
		out.Images = []string{}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if p.ParentID != nil {
		out.ParentID = *p.ParentID
	}
	if p.CanonicalSKUID != nil {
		out.SKUID = *p.CanonicalSKUID
	}
	if canonical != nil {
		out.SKU = domainsku.Display(canonical.Fragments)
	}
	return out
}
