package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/application/ports"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/jhoicas/inventario-stock/pkg/validator"
)

// InitialStockReason motivo del movimiento IN que registra la existencia inicial.
const InitialStockReason = "stock inicial"

// sharedLoadTimeout tope de una carga compartida por singleflight.
const sharedLoadTimeout = 10 * time.Second

// ProductUseCase casos de uso de catálogo. Amount solo cambia vía movimientos:
// la creación registra la existencia inicial en el libro y la edición nunca la toca.
type ProductUseCase struct {
	repo     repository.ProductRepository
	txRunner inventory.TxRunner
	cache    ports.Cache
	group    singleflight.Group
}

// NewProductUseCase construye el caso de uso. cache puede ser nil.
func NewProductUseCase(repo repository.ProductRepository, txRunner inventory.TxRunner, cache ports.Cache) *ProductUseCase {
	if cache == nil {
		cache = noCache{}
	}
	return &ProductUseCase{repo: repo, txRunner: txRunner, cache: cache}
}

// Create crea un producto. Con Amount > 0 registra un movimiento IN en la misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest, userID string) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Amount:      in.Amount,
		StockMin:    in.StockMin,
	}
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		exists, err := productRepo.ExistsActiveBySKU(ctx, product.SKU)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, product.SKU)
		}
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if product.Amount == 0 {
			return nil
		}
		return movRepo.Append(ctx, &entity.StockMovement{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Type:      entity.MovementTypeIN,
			Quantity:  product.Amount,
			Reason:    InitialStockReason,
			CreatedBy: userID,
		})
	})
	if err != nil {
		return nil, err
	}
	_ = uc.cache.InvalidateAll(context.WithoutCancel(ctx), ports.BucketProductLists)
	return dto.NewProductResponse(product), nil
}

// GetByID obtiene un producto activo por ID. domain.ErrNotFound si no existe o está borrado.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	return uc.cachedProduct(ctx, ports.ProductIDKey(id), func(ctx context.Context) (*entity.Product, error) {
		return uc.repo.FindActiveByID(ctx, id)
	})
}

// GetBySKU obtiene un producto activo por SKU.
func (uc *ProductUseCase) GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	sku = strings.TrimSpace(sku)
	return uc.cachedProduct(ctx, ports.ProductSKUKey(sku), func(ctx context.Context) (*entity.Product, error) {
		return uc.repo.FindActiveBySKU(ctx, sku)
	})
}

// Update edita metadatos (name, description, category, price, stock_min). No modifica amount ni sku.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := validateUpdate(in); err != nil {
		return nil, err
	}
	var product *entity.Product
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.StockMovementRepository,
	) error {
		p, err := productRepo.FindActiveByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.Category != nil {
			p.Category = *in.Category
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.StockMin != nil {
			p.StockMin = *in.StockMin
		}
		if err := productRepo.Update(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.invalidateProduct(context.WithoutCancel(ctx), product)
	return dto.NewProductResponse(product), nil
}

// Delete borrado lógico. El producto deja de ser visible y ajustable; su historial se conserva.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	var product *entity.Product
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.StockMovementRepository,
	) error {
		p, err := productRepo.FindActiveByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		if err := productRepo.SoftDelete(ctx, id); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return err
	}
	uc.invalidateProduct(context.WithoutCancel(ctx), product)
	return nil
}

// List lista productos activos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	key := ports.ProductListKey("all", page.Limit, page.Offset)
	return uc.cachedList(ctx, key, page, func(ctx context.Context, p repository.Page) ([]*entity.Product, int, error) {
		return uc.repo.ListActive(ctx, p)
	})
}

// SearchByName busca productos activos cuyo nombre contiene name (sin distinguir mayúsculas).
func (uc *ProductUseCase) SearchByName(ctx context.Context, name string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "no puede estar vacío")
	}
	page.DefaultPage()
	key := ports.ProductListKey("name", page.Limit, page.Offset, strings.ToLower(name))
	return uc.cachedList(ctx, key, page, func(ctx context.Context, p repository.Page) ([]*entity.Product, int, error) {
		return uc.repo.SearchActiveByName(ctx, name, p)
	})
}

// FilterByPrice productos activos con minPrice <= price <= maxPrice.
func (uc *ProductUseCase) FilterByPrice(ctx context.Context, minPrice, maxPrice *decimal.Decimal, page dto.PageRequest) (*dto.ProductListResponse, error) {
	verr := &domain.ValidationError{}
	if minPrice == nil {
		verr.Add("minPrice", "es obligatorio")
	} else if minPrice.IsNegative() {
		verr.Add("minPrice", "no puede ser negativo")
	}
	if maxPrice == nil {
		verr.Add("maxPrice", "es obligatorio")
	}
	if minPrice != nil && maxPrice != nil && minPrice.GreaterThan(*maxPrice) {
		verr.Add("minPrice", "no puede ser mayor que maxPrice")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	key := ports.ProductListKey("price", page.Limit, page.Offset, minPrice.String(), maxPrice.String())
	return uc.cachedList(ctx, key, page, func(ctx context.Context, p repository.Page) ([]*entity.Product, int, error) {
		return uc.repo.ListActiveByPriceRange(ctx, *minPrice, *maxPrice, p)
	})
}

func (uc *ProductUseCase) invalidateProduct(ctx context.Context, p *entity.Product) {
	_ = uc.cache.Invalidate(ctx, ports.ProductIDKey(p.ID), ports.ProductSKUKey(p.SKU))
	_ = uc.cache.InvalidateAll(ctx, ports.BucketProductLists)
}

// cachedProduct lee de caché y, en fallo, carga una sola vez por clave (singleflight).
func (uc *ProductUseCase) cachedProduct(ctx context.Context, key string, load func(context.Context) (*entity.Product, error)) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if uc.fromCache(ctx, key, &out) {
		return &out, nil
	}
	v, err := uc.share(ctx, key, func(ctx context.Context) (any, error) {
		p, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
		resp := dto.NewProductResponse(p)
		uc.toCache(ctx, "", key, resp)
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	out = *v.(*dto.ProductResponse)
	return &out, nil
}

func (uc *ProductUseCase) cachedList(
	ctx context.Context,
	key string,
	page dto.PageRequest,
	load func(context.Context, repository.Page) ([]*entity.Product, int, error),
) (*dto.ProductListResponse, error) {
	var out dto.ProductListResponse
	if uc.fromCache(ctx, key, &out) {
		return &out, nil
	}
	v, err := uc.share(ctx, key, func(ctx context.Context) (any, error) {
		list, total, err := load(ctx, page.ToRepository())
		if err != nil {
			return nil, err
		}
		resp := dto.NewProductListResponse(list, total, page)
		uc.toCache(ctx, ports.BucketProductLists, key, resp)
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	shared := v.(*dto.ProductListResponse)
	out = dto.ProductListResponse{Items: append([]dto.ProductResponse(nil), shared.Items...), Page: shared.Page}
	if out.Items == nil {
		out.Items = []dto.ProductResponse{}
	}
	return &out, nil
}

// share ejecuta fn una sola vez por clave. fn no hereda la cancelación del llamador que abrió
// el vuelo; cada llamador deja de esperar cuando vence su propio contexto.
func (uc *ProductUseCase) share(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := uc.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		return fn(loadCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (uc *ProductUseCase) fromCache(ctx context.Context, key string, dst any) bool {
	raw, ok, err := uc.cache.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (uc *ProductUseCase) toCache(ctx context.Context, bucket, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = uc.cache.Set(ctx, bucket, key, raw)
}

func validateCreate(in dto.CreateProductRequest) error {
	verr := &domain.ValidationError{}
	if err := validator.Struct(in); err != nil {
		fieldErr, ok := err.(*domain.ValidationError)
		if !ok {
			return err
		}
		verr = fieldErr
	}
	switch {
	case !in.Price.IsPositive():
		verr.Add("price", "debe ser mayor que cero")
	case in.Price.GreaterThan(entity.MaxPrice):
		verr.Add("price", "debe ser menor o igual a "+entity.MaxPrice.String())
	}
	return verr.OrNil()
}

func validateUpdate(in dto.UpdateProductRequest) error {
	verr := &domain.ValidationError{}
	if err := validator.Struct(in); err != nil {
		fieldErr, ok := err.(*domain.ValidationError)
		if !ok {
			return err
		}
		verr = fieldErr
	}
	switch {
	case in.Price == nil:
	case !in.Price.IsPositive():
		verr.Add("price", "debe ser mayor que cero")
	case in.Price.GreaterThan(entity.MaxPrice):
		verr.Add("price", "debe ser menor o igual a "+entity.MaxPrice.String())
	}
	return verr.OrNil()
}

type noCache struct{}

func (noCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noCache) Set(context.Context, string, string, []byte) error { return nil }
func (noCache) Invalidate(context.Context, ...string) error       { return nil }
func (noCache) InvalidateAll(context.Context, string) error       { return nil }
