package dto

import (
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// StockRequest body para POST /api/products/:id/stock/increase|decrease.
type StockRequest struct {
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

// AdjustStockRequest body para POST /api/products/:id/stock (tipo explícito).
type AdjustStockRequest struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

// AlertResponse producto activo por debajo de su stock mínimo.
type AlertResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Amount   int    `json:"amount"`
	StockMin int    `json:"stock_min"`
	Deficit  int    `json:"deficit"` // stock_min - amount
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// NewMovementListResponse arma la página de movimientos.
func NewMovementListResponse(list []*entity.StockMovement, total int, page PageRequest) *MovementListResponse {
	page.DefaultPage()
	items := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, MovementResponse{
			ID:        m.ID,
			ProductID: m.ProductID,
			Type:      m.Type,
			Quantity:  m.Quantity,
			Reason:    m.Reason,
			CreatedBy: m.CreatedBy,
			CreatedAt: m.CreatedAt,
		})
	}
	return &MovementListResponse{
		Items: items,
		Page:  PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
}
