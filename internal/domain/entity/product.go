package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity tope de amount, stock_min y quantity (columnas INTEGER).
const MaxQuantity = math.MaxInt32

// MaxPrice tope de price (NUMERIC(10,2)).
var MaxPrice = decimal.RequireFromString("99999999.99")

// Product representa un producto del catálogo con su existencia actual.
// Amount solo cambia vía movimientos de inventario; las ediciones de catálogo no lo tocan.
type Product struct {
	ID          string
	SKU         string // AAA-0000, inmutable, único entre productos activos
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal // precio de venta
	Amount      int             // existencia actual, siempre >= 0
	StockMin    int             // stock mínimo deseado
	Deleted     bool            // borrado lógico
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsBelowMinimum indica si la existencia está por debajo del stock mínimo.
func (p *Product) IsBelowMinimum() bool {
	return p.Amount < p.StockMin
}

// Deficit devuelve StockMin - Amount, o 0 si no hay faltante.
func (p *Product) Deficit() int {
	if !p.IsBelowMinimum() {
		return 0
	}
	return p.StockMin - p.Amount
}
