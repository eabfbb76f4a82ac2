// Package memory implementa los puertos de persistencia en memoria del proceso
// (STORE_DRIVER=memory). Semántica equivalente a PostgreSQL: bloqueo por producto
// mantenido hasta commit/rollback y escrituras visibles solo tras el commit.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// Store estado confirmado de productos y movimientos.
type Store struct {
	mu        sync.RWMutex
	products  map[string]*entity.Product
	movements []*entity.StockMovement
	seq       int64
	lastTime  time.Time

	locksMu sync.Mutex
	locks   map[string]*rowLock

	now func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[string]*entity.Product),
		locks:    make(map[string]*rowLock),
		now:      time.Now,
	}
}

// rowLock semáforo (capacidad 1) de un producto. refs cuenta las tx que lo tienen o lo esperan;
// en cero la entrada sale del mapa.
type rowLock struct {
	ch   chan struct{}
	refs int
}

func (s *Store) acquireLock(id string) *rowLock {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &rowLock{ch: make(chan struct{}, 1)}
		s.locks[id] = l
	}
	l.refs++
	return l
}

func (s *Store) releaseLock(id string, l *rowLock) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
}

// tick devuelve un instante estrictamente creciente. Debe llamarse con mu tomado.
func (s *Store) tick() time.Time {
	t := s.now().UTC().Truncate(time.Microsecond)
	if !t.After(s.lastTime) {
		t = s.lastTime.Add(time.Microsecond)
	}
	s.lastTime = t
	return t
}

func (s *Store) begin() *txState {
	return &txState{
		store:   s,
		held:    make(map[string]*rowLock),
		created: make(map[string]*entity.Product),
		dirty:   make(map[string]*entity.Product),
	}
}

// txState escrituras pendientes y bloqueos tomados por una transacción.
type txState struct {
	store     *Store
	held      map[string]*rowLock
	created   map[string]*entity.Product
	dirty     map[string]*entity.Product
	movements []*entity.StockMovement
	done      bool
}

// lock toma el bloqueo del producto (reentrante dentro de la misma tx).
func (t *txState) lock(ctx context.Context, id string) error {
	if _, ok := t.held[id]; ok {
		return nil
	}
	l := t.store.acquireLock(id)
	select {
	case l.ch <- struct{}{}:
		t.held[id] = l
		return nil
	case <-ctx.Done():
		t.store.releaseLock(id, l)
		return fmt.Errorf("esperando bloqueo del producto %s: %w", id, ctx.Err())
	}
}

// current estado visible para la tx: pendiente si existe, si no el confirmado. Devuelve copia.
func (t *txState) current(id string) *entity.Product {
	if p, ok := t.dirty[id]; ok {
		return copyProduct(p)
	}
	if p, ok := t.created[id]; ok {
		return copyProduct(p)
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return copyProduct(t.store.products[id])
}

// commit aplica las escrituras pendientes de forma atómica.
func (t *txState) commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range t.created {
		if _, exists := s.products[p.ID]; exists {
			return fmt.Errorf("%w: producto %s", domain.ErrDuplicate, p.ID)
		}
		for _, other := range s.products {
			if !other.Deleted && other.SKU == p.SKU {
				return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, p.SKU)
			}
		}
	}
	for id, p := range t.created {
		s.products[id] = copyProduct(p)
	}
	for id, p := range t.dirty {
		s.products[id] = copyProduct(p)
	}
	for _, m := range t.movements {
		s.seq++
		m.Seq = s.seq
		m.CreatedAt = s.tick()
		cp := *m
		s.movements = append(s.movements, &cp)
	}
	t.done = true
	return nil
}

// end libera los bloqueos. Lo no confirmado se descarta.
func (t *txState) end() {
	for id, l := range t.held {
		<-l.ch
		t.store.releaseLock(id, l)
		delete(t.held, id)
	}
	if !t.done {
		t.created = nil
		t.dirty = nil
		t.movements = nil
	}
}

// with ejecuta fn en la tx actual o, sin tx, en una tx de un solo uso (autocommit).
func (s *Store) with(tx *txState, fn func(t *txState) error) error {
	if tx != nil {
		return fn(tx)
	}
	t := s.begin()
	defer t.end()
	if err := fn(t); err != nil {
		return err
	}
	return t.commit()
}

func copyProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
