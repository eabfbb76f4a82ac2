package memory

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// TxRunner implementa inventory.TxRunner sobre Store.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con repositorios atados a una tx. Commit si fn devuelve nil y el contexto
// sigue vivo; en cualquier otro caso (error, panic, cancelación) se descarta todo.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := r.store.begin()
	defer t.end()

	if err := fn(&ProductRepository{store: r.store, tx: t}, &StockMovementRepository{store: r.store, tx: t}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.commit()
}
