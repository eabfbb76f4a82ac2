package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso (incluida la cancelación del contexto).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// AlertReportGenerator genera el reporte PDF de productos bajo mínimo.
type AlertReportGenerator interface {
	GenerateLowStockReport(alerts []dto.AlertResponse, generatedAt time.Time) ([]byte, error)
}
