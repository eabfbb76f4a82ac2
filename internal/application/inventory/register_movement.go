package inventory

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
)

// AdjustFromRequest adapta el request HTTP (tipo explícito) al caso de uso AdjustStock.
func (uc *AdjustStockUseCase) AdjustFromRequest(ctx context.Context, productID, userID string, in dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	return uc.AdjustStock(ctx, AdjustStockInput{
		ProductID: productID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		UserID:    userID,
	})
}

// IncreaseFromRequest adapta el request HTTP de entrada de stock.
func (uc *AdjustStockUseCase) IncreaseFromRequest(ctx context.Context, productID, userID string, in dto.StockRequest) (*dto.ProductResponse, error) {
	return uc.Increase(ctx, productID, in.Quantity, in.Reason, userID)
}

// DecreaseFromRequest adapta el request HTTP de salida de stock.
func (uc *AdjustStockUseCase) DecreaseFromRequest(ctx context.Context, productID, userID string, in dto.StockRequest) (*dto.ProductResponse, error) {
	return uc.Decrease(ctx, productID, in.Quantity, in.Reason, userID)
}
