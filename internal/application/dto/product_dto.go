package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto.
// Amount > 0 genera un movimiento IN "stock inicial" en la misma transacción.
type CreateProductRequest struct {
	SKU         string          `json:"sku" validate:"required,sku"`
	Name        string          `json:"name" validate:"required,notblank,min=3,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Category    string          `json:"category" validate:"max=50"`
	Price       decimal.Decimal `json:"price"`
	Amount      int             `json:"amount" validate:"gte=0,lte=2147483647"`
	StockMin    int             `json:"stock_min" validate:"gte=0,lte=2147483647"`
}

// UpdateProductRequest edición de metadatos. No existen campos amount ni sku:
// la existencia solo cambia vía movimientos y el SKU es inmutable.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,notblank,min=3,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Category    *string          `json:"category" validate:"omitempty,max=50"`
	Price       *decimal.Decimal `json:"price"`
	StockMin    *int             `json:"stock_min" validate:"omitempty,gte=0,lte=2147483647"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Amount      int             `json:"amount"`
	StockMin    int             `json:"stock_min"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// NewProductResponse mapea la entidad a su representación de salida.
func NewProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Amount:      p.Amount,
		StockMin:    p.StockMin,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewProductListResponse arma la página de productos.
func NewProductListResponse(list []*entity.Product, total int, page PageRequest) *ProductListResponse {
	page.DefaultPage()
	items := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *NewProductResponse(p))
	}
	return &ProductListResponse{
		Items: items,
		Page:  PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
}
