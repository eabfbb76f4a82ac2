package repository

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// StockMovementRepository define el puerto del libro de movimientos (solo inserción).
type StockMovementRepository interface {
	// Append asigna ID (si falta), CreatedAt y Seq.
	Append(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct ordena por created_at descendente.
	ListByProduct(ctx context.Context, productID string, page Page) ([]*entity.StockMovement, int, error)
	ListByType(ctx context.Context, movementType string, page Page) ([]*entity.StockMovement, int, error)
	ListAll(ctx context.Context, page Page) ([]*entity.StockMovement, int, error)
}
