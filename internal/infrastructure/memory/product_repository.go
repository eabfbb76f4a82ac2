package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// ProductRepository implementa repository.ProductRepository en memoria.
// Sin tx cada escritura se confirma de inmediato.
type ProductRepository struct {
	store *Store
	tx    *txState
}

// NewProductRepository repositorio fuera de transacción.
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

// Create registra el producto. La unicidad del SKU activo se verifica al confirmar.
func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	return r.store.with(r.tx, func(t *txState) error {
		if p.ID == "" {
			return fmt.Errorf("%w: id vacío", domain.ErrInvalidInput)
		}
		if p.Amount < 0 {
			return fmt.Errorf("%w: amount negativo", domain.ErrInvalidInput)
		}
		for _, staged := range t.created {
			if staged.SKU == p.SKU {
				return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, p.SKU)
			}
		}
		r.store.mu.Lock()
		now := r.store.tick()
		r.store.mu.Unlock()
		p.Deleted = false
		p.CreatedAt = now
		p.UpdatedAt = now
		t.created[p.ID] = copyProduct(p)
		return nil
	})
}

// FindActiveByID devuelve (nil, nil) si no existe o está borrado.
func (r *ProductRepository) FindActiveByID(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.store.with(r.tx, func(t *txState) error {
		out = active(t.current(id))
		return nil
	})
	return out, err
}

// FindActiveByIDForUpdate toma el bloqueo del producto hasta el fin de la tx.
func (r *ProductRepository) FindActiveByIDForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if r.tx == nil {
		return r.FindActiveByID(ctx, id)
	}
	if err := r.tx.lock(ctx, id); err != nil {
		return nil, err
	}
	return active(r.tx.current(id)), nil
}

// FindActiveBySKU devuelve (nil, nil) si no hay producto activo con ese SKU.
func (r *ProductRepository) FindActiveBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.store.with(r.tx, func(t *txState) error {
		for _, p := range r.visible(t) {
			if p.SKU == sku {
				out = p
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ExistsActiveBySKU indica si hay un producto activo con ese SKU.
func (r *ProductRepository) ExistsActiveBySKU(ctx context.Context, sku string) (bool, error) {
	p, err := r.FindActiveBySKU(ctx, sku)
	return p != nil, err
}

// Update persiste solo los metadatos editables.
func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	return r.mutate(ctx, p.ID, func(cur *entity.Product) error {
		cur.Name = p.Name
		cur.Description = p.Description
		cur.Category = p.Category
		cur.Price = p.Price
		cur.StockMin = p.StockMin
		p.UpdatedAt = cur.UpdatedAt
		return nil
	})
}

// UpdateAmount persiste solo amount.
func (r *ProductRepository) UpdateAmount(ctx context.Context, p *entity.Product) error {
	return r.mutate(ctx, p.ID, func(cur *entity.Product) error {
		if p.Amount < 0 {
			return fmt.Errorf("%w: amount negativo", domain.ErrInvalidInput)
		}
		cur.Amount = p.Amount
		p.UpdatedAt = cur.UpdatedAt
		return nil
	})
}

// SoftDelete marca el producto como borrado.
func (r *ProductRepository) SoftDelete(ctx context.Context, id string) error {
	return r.mutate(ctx, id, func(cur *entity.Product) error {
		cur.Deleted = true
		return nil
	})
}

// ListActive productos activos por fecha de creación.
func (r *ProductRepository) ListActive(ctx context.Context, page repository.Page) ([]*entity.Product, int, error) {
	return r.list(func(*entity.Product) bool { return true }, page)
}

// SearchActiveByName coincidencia parcial sin distinguir mayúsculas.
func (r *ProductRepository) SearchActiveByName(ctx context.Context, name string, page repository.Page) ([]*entity.Product, int, error) {
	needle := strings.ToLower(name)
	return r.list(func(p *entity.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	}, page)
}

// ListActiveByPriceRange productos con minPrice <= price <= maxPrice.
func (r *ProductRepository) ListActiveByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page repository.Page) ([]*entity.Product, int, error) {
	return r.list(func(p *entity.Product) bool {
		return p.Price.GreaterThanOrEqual(minPrice) && p.Price.LessThanOrEqual(maxPrice)
	}, page)
}

// ListLowStock productos activos con amount < stock_min, mayor déficit primero.
func (r *ProductRepository) ListLowStock(ctx context.Context) ([]entity.LowStockItem, error) {
	var out []entity.LowStockItem
	err := r.store.with(r.tx, func(t *txState) error {
		for _, p := range r.visible(t) {
			if p.IsBelowMinimum() {
				out = append(out, entity.LowStockItem{
					ProductID: p.ID,
					Name:      p.Name,
					SKU:       p.SKU,
					Amount:    p.Amount,
					StockMin:  p.StockMin,
				})
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Deficit() != out[j].Deficit() {
			return out[i].Deficit() > out[j].Deficit()
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, err
}

// mutate aplica fn sobre la versión visible del producto activo bajo su bloqueo.
func (r *ProductRepository) mutate(ctx context.Context, id string, fn func(cur *entity.Product) error) error {
	return r.store.with(r.tx, func(t *txState) error {
		if err := t.lock(ctx, id); err != nil {
			return err
		}
		cur := active(t.current(id))
		if cur == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		r.store.mu.Lock()
		cur.UpdatedAt = r.store.tick()
		r.store.mu.Unlock()
		if err := fn(cur); err != nil {
			return err
		}
		if _, ok := t.created[id]; ok {
			t.created[id] = cur
			return nil
		}
		t.dirty[id] = cur
		return nil
	})
}

// visible productos activos vistos por la tx (confirmados + pendientes), ordenados.
func (r *ProductRepository) visible(t *txState) []*entity.Product {
	r.store.mu.RLock()
	ids := make([]string, 0, len(r.store.products)+len(t.created))
	for id := range r.store.products {
		ids = append(ids, id)
	}
	r.store.mu.RUnlock()
	for id := range t.created {
		ids = append(ids, id)
	}
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if p := active(t.current(id)); p != nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *ProductRepository) list(match func(*entity.Product) bool, page repository.Page) ([]*entity.Product, int, error) {
	var all []*entity.Product
	err := r.store.with(r.tx, func(t *txState) error {
		for _, p := range r.visible(t) {
			if match(p) {
				all = append(all, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return paginate(all, page), len(all), nil
}

func active(p *entity.Product) *entity.Product {
	if p == nil || p.Deleted {
		return nil
	}
	return p
}

func paginate[T any](items []T, page repository.Page) []T {
	if page.Offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return items[page.Offset:end]
}
