package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/memory"
)

type stubReport struct {
	alerts []dto.AlertResponse
}

func (s *stubReport) GenerateLowStockReport(alerts []dto.AlertResponse, _ time.Time) ([]byte, error) {
	s.alerts = alerts
	return []byte("%PDF-stub"), nil
}

func TestAlerts_OrdenPorDeficitYLuegoID(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "b", 1, 4)
	seedProduct(t, store, "a", 0, 3)
	seedProduct(t, store, "c", 9, 10)
	seedProduct(t, store, "d", 10, 10)
	seedProduct(t, store, "e", 0, 8)
	require.NoError(t, memory.NewProductRepository(store).SoftDelete(context.Background(), "e"))

	uc := inventory.NewAlertsUseCase(memory.NewProductRepository(store), nil)
	alerts, err := uc.LowStockAlerts(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(alerts))
	for _, a := range alerts {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, 3, alerts[0].Deficit)
	assert.Equal(t, "SKU-a", alerts[0].SKU)
}

func TestAlerts_SinProductosBajoMinimo(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "a", 5, 5)
	alerts, err := inventory.NewAlertsUseCase(memory.NewProductRepository(store), nil).LowStockAlerts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestAlerts_ReflejaAjustes(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "a", 5, 3)
	alertsUC := inventory.NewAlertsUseCase(memory.NewProductRepository(store), nil)
	adjust := inventory.NewAdjustStockUseCase(memory.NewTxRunner(store), inventory.AdjustStockOptions{})

	_, err := adjust.Decrease(context.Background(), "a", 4, "venta", "")
	require.NoError(t, err)
	alerts, err := alertsUC.LowStockAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 2, alerts[0].Deficit)

	_, err = adjust.Increase(context.Background(), "a", 2, "compra", "")
	require.NoError(t, err)
	alerts, err = alertsUC.LowStockAlerts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts, "amount == stock_min no es alerta")
}

func TestAlerts_Reporte(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "a", 0, 3)

	_, err := inventory.NewAlertsUseCase(memory.NewProductRepository(store), nil).LowStockReport(context.Background())
	assert.Error(t, err)

	gen := &stubReport{}
	pdf, err := inventory.NewAlertsUseCase(memory.NewProductRepository(store), gen).LowStockReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-stub"), pdf)
	require.Len(t, gen.alerts, 1)
	assert.Equal(t, "a", gen.alerts[0].ID)
}

func TestHistory_ConsultasYValidaciones(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "a", 0, 0)
	seedProduct(t, store, "b", 0, 0)
	adjust := inventory.NewAdjustStockUseCase(memory.NewTxRunner(store), inventory.AdjustStockOptions{})
	ctx := context.Background()
	_, err := adjust.Increase(ctx, "a", 5, "compra", "")
	require.NoError(t, err)
	_, err = adjust.Increase(ctx, "b", 1, "compra", "")
	require.NoError(t, err)
	_, err = adjust.Decrease(ctx, "a", 2, "venta", "")
	require.NoError(t, err)

	history := inventory.NewHistoryUseCase(memory.NewStockMovementRepository(store))

	byProduct, err := history.ByProduct(ctx, "a", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, byProduct.Items, 2)
	assert.Equal(t, entity.MovementTypeOUT, byProduct.Items[0].Type)
	assert.Equal(t, 20, byProduct.Page.Limit)

	byType, err := history.ByType(ctx, "in", dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, byType.Page.Total)
	require.Len(t, byType.Items, 1)
	assert.Equal(t, "a", byType.Items[0].ProductID)

	all, err := history.All(ctx, dto.PageRequest{Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Page.Total)
	assert.Len(t, all.Items, 2)

	_, err = history.ByProduct(ctx, " ", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = history.ByType(ctx, "TRANSFER", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// producto sin movimientos: lista vacía, no error
	empty, err := history.ByProduct(ctx, "zzz", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}
