package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/domain"
)

type sample struct {
	SKU      string  `json:"sku" validate:"required,sku"`
	Name     string  `json:"name" validate:"required,min=3,max=100"`
	StockMin int     `json:"stock_min" validate:"gte=0"`
	Reason   string  `json:"reason" validate:"notblank"`
	Category *string `json:"category" validate:"omitempty,max=5"`
}

func TestStruct_Valido(t *testing.T) {
	err := Struct(sample{SKU: "ABC-1234", Name: "Coca-cola", StockMin: 0, Reason: "compra"})
	assert.NoError(t, err)
}

func TestStruct_AgrupaViolaciones(t *testing.T) {
	long := "demasiado"
	err := Struct(sample{SKU: "abc-12", Name: "ab", StockMin: -1, Reason: "   ", Category: &long})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "debe tener el formato AAA-0000", verr.Fields["sku"])
	assert.Equal(t, "debe tener al menos 3 caracteres", verr.Fields["name"])
	assert.Equal(t, "debe ser mayor o igual a 0", verr.Fields["stock_min"])
	assert.Equal(t, "no puede estar vacío", verr.Fields["reason"])
	assert.Contains(t, verr.Fields, "category")
}

func TestSKUPattern(t *testing.T) {
	assert.True(t, SKUPattern.MatchString("AAA-0000"))
	assert.False(t, SKUPattern.MatchString("AAA-00000"))
	assert.False(t, SKUPattern.MatchString("aaa-0000"))
	assert.False(t, SKUPattern.MatchString(" AAA-0000"))
}
