package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// HistoryUseCase consulta el libro de movimientos. Nunca se usa para derivar la existencia actual.
type HistoryUseCase struct {
	movRepo repository.StockMovementRepository
}

// NewHistoryUseCase construye el caso de uso.
func NewHistoryUseCase(movRepo repository.StockMovementRepository) *HistoryUseCase {
	return &HistoryUseCase{movRepo: movRepo}
}

// ByProduct movimientos de un producto, más recientes primero. Incluye productos borrados.
func (uc *HistoryUseCase) ByProduct(ctx context.Context, productID string, page dto.PageRequest) (*dto.MovementListResponse, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	list, total, err := uc.movRepo.ListByProduct(ctx, productID, page.ToRepository())
	if err != nil {
		return nil, err
	}
	return dto.NewMovementListResponse(list, total, page), nil
}

// ByType movimientos de un tipo (IN, OUT, ADJUST).
func (uc *HistoryUseCase) ByType(ctx context.Context, movementType string, page dto.PageRequest) (*dto.MovementListResponse, error) {
	movementType = strings.ToUpper(strings.TrimSpace(movementType))
	if !entity.IsValidMovementType(movementType) {
		return nil, domain.NewValidationError("type", fmt.Sprintf("tipo de movimiento desconocido: %q", movementType))
	}
	list, total, err := uc.movRepo.ListByType(ctx, movementType, page.ToRepository())
	if err != nil {
		return nil, err
	}
	return dto.NewMovementListResponse(list, total, page), nil
}

// All todos los movimientos en orden de registro.
func (uc *HistoryUseCase) All(ctx context.Context, page dto.PageRequest) (*dto.MovementListResponse, error) {
	list, total, err := uc.movRepo.ListAll(ctx, page.ToRepository())
	if err != nil {
		return nil, err
	}
	return dto.NewMovementListResponse(list, total, page), nil
}
