package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// StockMovementRepository implementa el libro de movimientos en memoria (solo inserción).
type StockMovementRepository struct {
	store *Store
	tx    *txState
}

// NewStockMovementRepository repositorio fuera de transacción.
func NewStockMovementRepository(store *Store) *StockMovementRepository {
	return &StockMovementRepository{store: store}
}

// Append agrega el movimiento. Seq y CreatedAt se asignan al confirmar la tx.
func (r *StockMovementRepository) Append(ctx context.Context, m *entity.StockMovement) error {
	return r.store.with(r.tx, func(t *txState) error {
		if t.current(m.ProductID) == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, m.ProductID)
		}
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		t.movements = append(t.movements, m)
		return nil
	})
}

// ListByProduct movimientos del producto, más recientes primero.
func (r *StockMovementRepository) ListByProduct(ctx context.Context, productID string, page repository.Page) ([]*entity.StockMovement, int, error) {
	out := r.filter(func(m *entity.StockMovement) bool { return m.ProductID == productID })
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Seq > out[j].Seq
	})
	return paginate(out, page), len(out), nil
}

// ListByType movimientos de un tipo en orden de registro.
func (r *StockMovementRepository) ListByType(ctx context.Context, movementType string, page repository.Page) ([]*entity.StockMovement, int, error) {
	out := r.filter(func(m *entity.StockMovement) bool { return m.Type == movementType })
	return paginate(out, page), len(out), nil
}

// ListAll todos los movimientos en orden de registro.
func (r *StockMovementRepository) ListAll(ctx context.Context, page repository.Page) ([]*entity.StockMovement, int, error) {
	out := r.filter(func(*entity.StockMovement) bool { return true })
	return paginate(out, page), len(out), nil
}

// filter copia los movimientos confirmados que cumplen match (orden por Seq).
func (r *StockMovementRepository) filter(match func(*entity.StockMovement) bool) []*entity.StockMovement {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entity.StockMovement, 0)
	for _, m := range r.store.movements {
		if match(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out
}
