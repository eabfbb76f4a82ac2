package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC *usecase.ProductUseCase
	AdjustUC  *inventory.AdjustStockUseCase
	AlertsUC  *inventory.AlertsUseCase
	HistoryUC *inventory.HistoryUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
// Las rutas estáticas de /api/products se registran antes que /:id.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	auth := AuthMiddleware(deps.JWTSecret)

	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.AdjustUC, deps.AlertsUC, deps.HistoryUC)

	products := api.Group("/products")
	products.Post("/", auth, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/search", productHandler.Search)
	products.Get("/search/price", productHandler.FilterByPrice)
	products.Get("/alerts", inventoryHandler.Alerts)
	products.Get("/alerts/report", inventoryHandler.AlertsReport)
	products.Get("/sku/:sku", productHandler.GetBySKU)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", auth, productHandler.Update)
	products.Delete("/:id", auth, productHandler.Delete)
	products.Post("/:id/stock/increase", auth, inventoryHandler.Increase)
	products.Post("/:id/stock/decrease", auth, inventoryHandler.Decrease)
	products.Post("/:id/stock", auth, inventoryHandler.Adjust)

	stock := api.Group("/stock")
	stock.Get("/", inventoryHandler.History)
	stock.Get("/product/:productId", inventoryHandler.HistoryByProduct)
}
