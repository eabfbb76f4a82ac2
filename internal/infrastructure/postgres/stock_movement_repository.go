package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, type, quantity, reason, created_by, created_at, seq`

// StockMovementRepo libro de movimientos sobre PostgreSQL. Solo inserción: no hay UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append inserta el movimiento. created_at usa clock_timestamp() para reflejar el orden real
// bajo el bloqueo de fila; seq es BIGSERIAL.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, product_id, type, quantity, reason, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, seq`
	err := r.q.QueryRow(ctx, query, m.ID, m.ProductID, m.Type, m.Quantity, m.Reason, m.CreatedBy).
		Scan(&m.CreatedAt, &m.Seq)
	if err != nil {
		return mapError("insert stock movement", err)
	}
	return nil
}

// ListByProduct movimientos del producto, más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, page repository.Page) ([]*entity.StockMovement, int, error) {
	if !isUUID(productID) {
		return []*entity.StockMovement{}, 0, nil
	}
	return r.list(ctx, "list movements by product", `product_id = $1`, `created_at DESC, seq DESC`, page, productID)
}

// ListByType movimientos de un tipo en orden de registro.
func (r *StockMovementRepo) ListByType(ctx context.Context, movementType string, page repository.Page) ([]*entity.StockMovement, int, error) {
	return r.list(ctx, "list movements by type", `type = $1`, `seq`, page, movementType)
}

// ListAll todos los movimientos en orden de registro.
func (r *StockMovementRepo) ListAll(ctx context.Context, page repository.Page) ([]*entity.StockMovement, int, error) {
	return r.list(ctx, "list movements", `TRUE`, `seq`, page)
}

func (r *StockMovementRepo) list(ctx context.Context, op, where, orderBy string, page repository.Page, args ...any) ([]*entity.StockMovement, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(op, err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM stock_movements WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		movementColumns, where, orderBy, n+1, n+2)
	rows, err := r.q.Query(ctx, query, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, mapError(op, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.StockMovement, error) {
		var m entity.StockMovement
		err := row.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.Reason, &m.CreatedBy, &m.CreatedAt, &m.Seq)
		return &m, err
	})
	if err != nil {
		return nil, 0, mapError(op, err)
	}
	return out, total, nil
}
