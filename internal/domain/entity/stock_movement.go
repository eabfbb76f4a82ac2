package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeIN     = "IN"     // entrada
	MovementTypeOUT    = "OUT"    // salida
	MovementTypeADJUST = "ADJUST" // ajuste administrativo (suma)
)

// IsValidMovementType indica si t es un tipo de movimiento conocido.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeADJUST:
		return true
	}
	return false
}

// StockMovement es un registro inmutable del libro de movimientos.
// Quantity es siempre positiva; la dirección la da Type.
type StockMovement struct {
	ID        string
	ProductID string
	Type      string
	Quantity  int
	Reason    string
	CreatedBy string // UserID, vacío si la petición fue anónima
	CreatedAt time.Time
	Seq       int64 // orden de inserción, desempate de CreatedAt
}

// LowStockItem es la proyección de un producto activo bajo su stock mínimo.
type LowStockItem struct {
	ProductID string
	Name      string
	SKU       string
	Amount    int
	StockMin  int
}

// Deficit devuelve StockMin - Amount.
func (i LowStockItem) Deficit() int {
	return i.StockMin - i.Amount
}
