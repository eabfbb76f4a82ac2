package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Las búsquedas Find* devuelven (nil, nil) si no existe un producto activo.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	FindActiveByID(ctx context.Context, id string) (*entity.Product, error)
	// FindActiveByIDForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	FindActiveByIDForUpdate(ctx context.Context, id string) (*entity.Product, error)
	FindActiveBySKU(ctx context.Context, sku string) (*entity.Product, error)
	ExistsActiveBySKU(ctx context.Context, sku string) (bool, error)
	// Update persiste solo name, description, category, price y stock_min.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateAmount persiste solo amount (usado por el motor de inventario).
	UpdateAmount(ctx context.Context, product *entity.Product) error
	// SoftDelete marca deleted = true; ErrNotFound si no hay producto activo.
	SoftDelete(ctx context.Context, id string) error
	ListActive(ctx context.Context, page Page) ([]*entity.Product, int, error)
	SearchActiveByName(ctx context.Context, name string, page Page) ([]*entity.Product, int, error)
	ListActiveByPriceRange(ctx context.Context, min, max decimal.Decimal, page Page) ([]*entity.Product, int, error)
	// ListLowStock devuelve productos activos con amount < stock_min.
	ListLowStock(ctx context.Context) ([]entity.LowStockItem, error)
}
