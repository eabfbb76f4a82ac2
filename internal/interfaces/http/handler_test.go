package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/application/usecase"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/inventario-stock/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventario-stock/internal/interfaces/http"
)

func newTestApp(t *testing.T, jwtSecret string) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	txRunner := memory.NewTxRunner(store)
	productRepo := memory.NewProductRepository(store)
	movRepo := memory.NewStockMovementRepository(store)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC: usecase.NewProductUseCase(productRepo, txRunner, nil),
		AdjustUC:  inventory.NewAdjustStockUseCase(txRunner, inventory.AdjustStockOptions{MaxRetries: 3}),
		AlertsUC:  inventory.NewAlertsUseCase(productRepo, infrapdf.NewMarotoReportGenerator("Alertas de stock")),
		HistoryUC: inventory.NewHistoryUseCase(movRepo),
		JWTSecret: jwtSecret,
	})
	return app
}

func send(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createProduct(t *testing.T, app *fiber.App, sku, name string, amount, stockMin int) dto.ProductResponse {
	t.Helper()
	resp := send(t, app, http.MethodPost, "/api/products", map[string]any{
		"sku": sku, "name": name, "price": "10.50", "amount": amount, "stock_min": stockMin,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.ProductResponse](t, resp)
}

func TestProductHandler_CreateYConsultar(t *testing.T) {
	app := newTestApp(t, "")
	created := createProduct(t, app, "ABC-0001", "Tornillo", 10, 2)
	assert.Equal(t, 10, created.Amount)
	assert.Equal(t, "10.5", created.Price.String())

	bySKU := decode[dto.ProductResponse](t, send(t, app, http.MethodGet, "/api/products/sku/ABC-0001", nil))
	assert.Equal(t, created.ID, bySKU.ID)

	byID := decode[dto.ProductResponse](t, send(t, app, http.MethodGet, "/api/products/"+created.ID, nil))
	assert.Equal(t, "Tornillo", byID.Name)

	history := decode[dto.MovementListResponse](t, send(t, app, http.MethodGet, "/api/stock/product/"+created.ID, nil))
	require.Len(t, history.Items, 1)
	assert.Equal(t, "IN", history.Items[0].Type)
	assert.Equal(t, usecase.InitialStockReason, history.Items[0].Reason)
}

func TestProductHandler_Create_ValidacionPorCampo(t *testing.T) {
	app := newTestApp(t, "")
	resp := send(t, app, http.MethodPost, "/api/products", map[string]any{
		"sku": "abc", "name": "x", "price": "0", "amount": -1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	for _, field := range []string{"sku", "name", "price", "amount"} {
		assert.Contains(t, body.Fields, field)
	}
}

func TestProductHandler_Create_SKUDuplicado(t *testing.T) {
	app := newTestApp(t, "")
	createProduct(t, app, "ABC-0001", "Tornillo", 0, 0)

	resp := send(t, app, http.MethodPost, "/api/products", map[string]any{
		"sku": "ABC-0001", "name": "Otro tornillo", "price": "1.00",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, resp).Code)
}

func TestProductHandler_Create_BodyInvalido(t *testing.T) {
	app := newTestApp(t, "")
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader([]byte("{no-json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decode[dto.ErrorResponse](t, resp).Code)
}

func TestInventoryHandler_DecreaseInsuficiente_NoModificaStock(t *testing.T) {
	app := newTestApp(t, "")
	p := createProduct(t, app, "ABC-0001", "Tornillo", 5, 0)

	resp := send(t, app, http.MethodPost, "/api/products/"+p.ID+"/stock/decrease", map[string]any{"quantity": 6, "reason": "venta"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, resp).Code)

	got := decode[dto.ProductResponse](t, send(t, app, http.MethodGet, "/api/products/"+p.ID, nil))
	assert.Equal(t, 5, got.Amount)

	history := decode[dto.MovementListResponse](t, send(t, app, http.MethodGet, "/api/stock/product/"+p.ID, nil))
	assert.Len(t, history.Items, 1, "solo el movimiento de stock inicial")
}

func TestInventoryHandler_IncreaseDecreaseAdjust(t *testing.T) {
	app := newTestApp(t, "")
	p := createProduct(t, app, "ABC-0001", "Tornillo", 5, 0)

	out := decode[dto.ProductResponse](t, send(t, app, http.MethodPost, "/api/products/"+p.ID+"/stock/increase", map[string]any{"quantity": 3, "reason": "compra"}))
	assert.Equal(t, 8, out.Amount)

	out = decode[dto.ProductResponse](t, send(t, app, http.MethodPost, "/api/products/"+p.ID+"/stock/decrease", map[string]any{"quantity": 8, "reason": "venta"}))
	assert.Equal(t, 0, out.Amount)

	out = decode[dto.ProductResponse](t, send(t, app, http.MethodPost, "/api/products/"+p.ID+"/stock", map[string]any{"type": "ADJUST", "quantity": 2, "reason": "conteo"}))
	assert.Equal(t, 2, out.Amount)

	all := decode[dto.MovementListResponse](t, send(t, app, http.MethodGet, "/api/stock", nil))
	assert.Equal(t, 4, all.Page.Total)

	outs := decode[dto.MovementListResponse](t, send(t, app, http.MethodGet, "/api/stock?type=out", nil))
	require.Len(t, outs.Items, 1)
	assert.Equal(t, 8, outs.Items[0].Quantity)

	history := decode[dto.MovementListResponse](t, send(t, app, http.MethodGet, "/api/stock/product/"+p.ID, nil))
	require.Len(t, history.Items, 4)
	assert.Equal(t, "ADJUST", history.Items[0].Type, "más reciente primero")
}

func TestInventoryHandler_Adjust_ValidacionReuneCampos(t *testing.T) {
	app := newTestApp(t, "")
	p := createProduct(t, app, "ABC-0001", "Tornillo", 5, 0)

	resp := send(t, app, http.MethodPost, "/api/products/"+p.ID+"/stock", map[string]any{"type": "MOVE", "quantity": 0, "reason": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Contains(t, body.Fields, "type")
	assert.Contains(t, body.Fields, "quantity")
	assert.Contains(t, body.Fields, "reason")
}

func TestProductHandler_Update_IgnoraAmountYSKU(t *testing.T) {
	app := newTestApp(t, "")
	p := createProduct(t, app, "ABC-0001", "Tornillo", 5, 1)

	resp := send(t, app, http.MethodPut, "/api/products/"+p.ID, map[string]any{
		"name": "Tornillo largo", "amount": 999, "sku": "ZZZ-9999", "stock_min": 3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.ProductResponse](t, resp)
	assert.Equal(t, "Tornillo largo", out.Name)
	assert.Equal(t, 5, out.Amount)
	assert.Equal(t, "ABC-0001", out.SKU)
	assert.Equal(t, 3, out.StockMin)
}

func TestProductHandler_DeleteLuegoAjuste_NotFound(t *testing.T) {
	app := newTestApp(t, "")
	p := createProduct(t, app, "ABC-0001", "Tornillo", 5, 0)

	resp := send(t, app, http.MethodDelete, "/api/products/"+p.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = send(t, app, http.MethodPost, "/api/products/"+p.ID+"/stock/increase", map[string]any{"quantity": 1, "reason": "compra"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)

	resp = send(t, app, http.MethodGet, "/api/products/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = send(t, app, http.MethodDelete, "/api/products/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	history := decode[dto.MovementListResponse](t, send(t, app, http.MethodGet, "/api/stock/product/"+p.ID, nil))
	assert.Len(t, history.Items, 1, "el historial sobrevive al borrado")

	// el SKU queda libre para un producto nuevo
	createProduct(t, app, "ABC-0001", "Tornillo nuevo", 0, 0)
}

func TestProductHandler_SearchYPrecio(t *testing.T) {
	app := newTestApp(t, "")
	createProduct(t, app, "ABC-0001", "Tornillo", 0, 0)
	createProduct(t, app, "ABC-0002", "Tuerca", 0, 0)

	list := decode[dto.ProductListResponse](t, send(t, app, http.MethodGet, "/api/products/search?name=TORN", nil))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "ABC-0001", list.Items[0].SKU)

	list = decode[dto.ProductListResponse](t, send(t, app, http.MethodGet, "/api/products/search/price?minPrice=10&maxPrice=11", nil))
	assert.Equal(t, 2, list.Page.Total)

	resp := send(t, app, http.MethodGet, "/api/products/search/price?minPrice=abc&maxPrice=11", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[dto.ErrorResponse](t, resp).Fields, "minPrice")

	resp = send(t, app, http.MethodGet, "/api/products/search/price?minPrice=20&maxPrice=11", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = send(t, app, http.MethodGet, "/api/products/search", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInventoryHandler_AlertsOrdenPorDeficit(t *testing.T) {
	app := newTestApp(t, "")
	a := createProduct(t, app, "ABC-0001", "Tornillo", 4, 5)
	b := createProduct(t, app, "ABC-0002", "Tuerca", 0, 10)
	createProduct(t, app, "ABC-0003", "Arandela", 10, 10)

	alerts := decode[[]dto.AlertResponse](t, send(t, app, http.MethodGet, "/api/products/alerts", nil))
	require.Len(t, alerts, 2)
	assert.Equal(t, b.ID, alerts[0].ID)
	assert.Equal(t, 10, alerts[0].Deficit)
	assert.Equal(t, a.ID, alerts[1].ID)
	assert.Equal(t, 1, alerts[1].Deficit)

	resp := send(t, app, http.MethodGet, "/api/products/alerts/report", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestInventoryHandler_HistoryTipoInvalido(t *testing.T) {
	app := newTestApp(t, "")
	resp := send(t, app, http.MethodGet, "/api/stock?type=MOVE", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[dto.ErrorResponse](t, resp).Fields, "type")
}

func TestHandlers_IDMalformado_NotFound(t *testing.T) {
	app := newTestApp(t, "")
	body := map[string]any{"quantity": 1, "reason": "compra"}

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/products/abc", nil},
		{http.MethodPut, "/api/products/abc", map[string]any{"name": "Tornillo"}},
		{http.MethodDelete, "/api/products/abc", nil},
		{http.MethodPost, "/api/products/abc/stock/increase", body},
		{http.MethodPost, "/api/products/abc/stock/decrease", body},
		{http.MethodPost, "/api/products/abc/stock", map[string]any{"type": "IN", "quantity": 1, "reason": "compra"}},
	} {
		resp := send(t, app, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tc.method+" "+tc.path)
		assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code, tc.method+" "+tc.path)
	}

	history := decode[dto.MovementListResponse](t, send(t, app, http.MethodGet, "/api/stock/product/abc", nil))
	assert.Zero(t, history.Page.Total)
	assert.Empty(t, history.Items)
}

func TestInventoryHandler_CantidadFueraDeRango(t *testing.T) {
	app := newTestApp(t, "")
	p := createProduct(t, app, "ABC-0001", "Tornillo", 5, 0)

	resp := send(t, app, http.MethodPost, "/api/products/"+p.ID+"/stock/increase", map[string]any{"quantity": 3_000_000_000, "reason": "compra"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[dto.ErrorResponse](t, resp).Fields, "quantity")

	resp = send(t, app, http.MethodPost, "/api/products", map[string]any{
		"sku": "ABC-0002", "name": "Tuerca", "price": "100000000.00", "amount": 3_000_000_000,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	fields := decode[dto.ErrorResponse](t, resp).Fields
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "amount")

	got := decode[dto.ProductResponse](t, send(t, app, http.MethodGet, "/api/products/"+p.ID, nil))
	assert.Equal(t, 5, got.Amount)
}
