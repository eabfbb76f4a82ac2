package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
)

// InventoryHandler maneja movimientos de stock, alertas e historial.
type InventoryHandler struct {
	adjust  *inventory.AdjustStockUseCase
	alerts  *inventory.AlertsUseCase
	history *inventory.HistoryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(adjust *inventory.AdjustStockUseCase, alerts *inventory.AlertsUseCase, history *inventory.HistoryUseCase) *InventoryHandler {
	return &InventoryHandler{adjust: adjust, alerts: alerts, history: history}
}

// Increase POST /api/products/:id/stock/increase
func (h *InventoryHandler) Increase(c *fiber.Ctx) error {
	var in dto.StockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.adjust.IncreaseFromRequest(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Decrease POST /api/products/:id/stock/decrease
func (h *InventoryHandler) Decrease(c *fiber.Ctx) error {
	var in dto.StockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.adjust.DecreaseFromRequest(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Adjust POST /api/products/:id/stock (tipo explícito IN | OUT | ADJUST)
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.adjust.AdjustFromRequest(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Alerts GET /api/products/alerts
func (h *InventoryHandler) Alerts(c *fiber.Ctx) error {
	out, err := h.alerts.LowStockAlerts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AlertsReport GET /api/products/alerts/report (PDF)
func (h *InventoryHandler) AlertsReport(c *fiber.Ctx) error {
	pdf, err := h.alerts.LowStockReport(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "alertas-stock.pdf"))
	return c.Send(pdf)
}

// HistoryByProduct GET /api/stock/product/:productId
func (h *InventoryHandler) HistoryByProduct(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.history.ByProduct(c.UserContext(), c.Params("productId"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// History GET /api/stock?type= ; sin type devuelve todos los movimientos.
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	var out *dto.MovementListResponse
	if t := c.Query("type"); t != "" {
		out, err = h.history.ByType(c.UserContext(), t, page)
	} else {
		out, err = h.history.All(c.UserContext(), page)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
