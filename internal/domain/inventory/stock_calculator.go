package inventory

import (
	"fmt"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// ApplyMovement calcula la nueva existencia al aplicar un movimiento (servicio de dominio).
// OUT resta y falla con ErrInsufficientStock si el resultado sería negativo. IN y ADJUST suman
// sin pasar de entity.MaxQuantity.
func ApplyMovement(current int, movementType string, quantity int) (int, error) {
	if quantity <= 0 {
		return current, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	switch movementType {
	case entity.MovementTypeOUT:
		if current < quantity {
			return current, domain.ErrInsufficientStock
		}
		return current - quantity, nil
	case entity.MovementTypeIN, entity.MovementTypeADJUST:
		if quantity > entity.MaxQuantity-current {
			return current, domain.NewValidationError("quantity",
				fmt.Sprintf("la existencia resultante superaría %d", entity.MaxQuantity))
		}
		return current + quantity, nil
	}
	return current, domain.NewValidationError("type", "tipo de movimiento inválido")
}

// LedgerBalance reconstruye la existencia a partir de los movimientos: Σ IN/ADJUST − Σ OUT.
// Solo para auditoría; la fuente de verdad de la existencia actual es Product.Amount.
func LedgerBalance(movements []*entity.StockMovement) int {
	total := 0
	for _, m := range movements {
		switch m.Type {
		case entity.MovementTypeOUT:
			total -= m.Quantity
		case entity.MovementTypeIN, entity.MovementTypeADJUST:
			total += m.Quantity
		}
	}
	return total
}
