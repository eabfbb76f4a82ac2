package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// AlertsUseCase proyecta los productos activos por debajo de su stock mínimo.
// Solo lectura: no modifica existencias ni el libro.
type AlertsUseCase struct {
	productRepo repository.ProductRepository
	reportGen   AlertReportGenerator
	now         func() time.Time
}

// NewAlertsUseCase construye el caso de uso. reportGen puede ser nil si no se expone el PDF.
func NewAlertsUseCase(productRepo repository.ProductRepository, reportGen AlertReportGenerator) *AlertsUseCase {
	return &AlertsUseCase{productRepo: productRepo, reportGen: reportGen, now: time.Now}
}

// LowStockAlerts devuelve los productos con amount < stock_min, ordenados por déficit
// descendente y, a igual déficit, por id ascendente.
func (uc *AlertsUseCase) LowStockAlerts(ctx context.Context) ([]dto.AlertResponse, error) {
	items, err := uc.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	alerts := make([]dto.AlertResponse, 0, len(items))
	for _, item := range items {
		if item.Deficit() <= 0 {
			continue
		}
		alerts = append(alerts, dto.AlertResponse{
			ID:       item.ProductID,
			Name:     item.Name,
			SKU:      item.SKU,
			Amount:   item.Amount,
			StockMin: item.StockMin,
			Deficit:  item.Deficit(),
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Deficit != alerts[j].Deficit {
			return alerts[i].Deficit > alerts[j].Deficit
		}
		return alerts[i].ID < alerts[j].ID
	})
	return alerts, nil
}

// LowStockReport genera el PDF con las mismas alertas de LowStockAlerts.
func (uc *AlertsUseCase) LowStockReport(ctx context.Context) ([]byte, error) {
	if uc.reportGen == nil {
		return nil, errors.New("generador de reportes no configurado")
	}
	alerts, err := uc.LowStockAlerts(ctx)
	if err != nil {
		return nil, err
	}
	return uc.reportGen.GenerateLowStockReport(alerts, uc.now())
}
