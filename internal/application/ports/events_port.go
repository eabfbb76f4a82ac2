package ports

import (
	"context"
	"time"
)

// LowStockEvent notificación emitida tras confirmar un ajuste que deja el producto bajo mínimo.
type LowStockEvent struct {
	ProductID    string    `json:"product_id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Amount       int       `json:"amount"`
	StockMin     int       `json:"stock_min"`
	Deficit      int       `json:"deficit"`
	MovementType string    `json:"movement_type"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// LowStockPublisher publica eventos de stock bajo (best effort, post-commit).
type LowStockPublisher interface {
	PublishLowStock(ctx context.Context, event LowStockEvent) error
}
