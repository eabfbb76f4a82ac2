package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var movementCols = []string{"id", "product_id", "type", "quantity", "reason", "created_by", "created_at", "seq"}

func TestStockMovementRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewStockMovementRepository(mock)

	m := &entity.StockMovement{
		ID:        "m-1",
		ProductID: "p-1",
		Type:      entity.MovementTypeOUT,
		Quantity:  5,
		Reason:    "venta mostrador",
		CreatedBy: "u-7",
	}
	at := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO stock_movements").
		WithArgs("m-1", "p-1", "OUT", 5, "venta mostrador", "u-7").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "seq"}).AddRow(at, int64(42)))

	require.NoError(t, repo.Append(context.Background(), m))
	assert.Equal(t, at, m.CreatedAt)
	assert.Equal(t, int64(42), m.Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockMovementRepo_Append_AsignaID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewStockMovementRepository(mock)

	m := &entity.StockMovement{ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: 1, Reason: "x"}
	mock.ExpectQuery("INSERT INTO stock_movements").
		WithArgs(pgxmock.AnyArg(), "p-1", "IN", 1, "x", "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "seq"}).AddRow(time.Now(), int64(1)))

	require.NoError(t, repo.Append(context.Background(), m))
	assert.NotEmpty(t, m.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockMovementRepo_ListByProduct_MasRecientePrimero(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewStockMovementRepository(mock)

	const productID = "2f1c7a52-5f0e-4a43-9d7e-0d2b9c3f6a11"
	t1 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM stock_movements WHERE product_id = \$1`).
		WithArgs(productID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT .+ FROM stock_movements WHERE product_id = \$1 ORDER BY created_at DESC, seq DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(productID, 10, 0).
		WillReturnRows(pgxmock.NewRows(movementCols).
			AddRow("m-2", productID, "OUT", 3, "venta", "", t2, int64(2)).
			AddRow("m-1", productID, "IN", 10, "compra", "", t1, int64(1)))

	list, total, err := repo.ListByProduct(context.Background(), productID, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "m-2", list[0].ID)
	assert.Equal(t, "m-1", list[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockMovementRepo_ListByProduct_IDMalformado(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewStockMovementRepository(mock)

	list, total, err := repo.ListByProduct(context.Background(), "abc", repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, list)
	assert.NotNil(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockMovementRepo_ListAll_Vacio(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewStockMovementRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM stock_movements WHERE TRUE`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .+ FROM stock_movements WHERE TRUE ORDER BY seq`).
		WithArgs(20, 40).
		WillReturnRows(pgxmock.NewRows(movementCols))

	list, total, err := repo.ListAll(context.Background(), repository.Page{Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}
