// Package memory implementa los puertos de persistencia en memoria.
//
// Un único mutex serializa todas las operaciones, así que las lecturas esperan a la escritura
// en curso. Una transacción escribe sobre el estado vivo y anota en un diario lo que toca; si
// falla, el diario lo restaura y la operación no deja rastro. El costo de una escritura depende
// de lo que toca, no del tamaño del libro, aunque las lecturas recorren el libro completo.
// Sirve como driver STORAGE_DRIVER=memory (un solo proceso, sin persistencia) y como doble de
// pruebas.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/restaurant-inventory/internal/application/inventory"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store estado compartido de los repositorios en memoria.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	products    map[string]*entity.Product
	categories  map[string]*entity.Category
	movements   []*entity.StockMovement // en orden de Seq
	movIndex    map[string]int
	productSeq  int64
	movementSeq int64
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{state: &state{
		products:   make(map[string]*entity.Product),
		categories: make(map[string]*entity.Category),
		movIndex:   make(map[string]int),
	}}
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{store: s} }

// Categories repositorio de categorías.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{store: s} }

// Movements repositorio del libro de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{store: s} }

// Run ejecuta fn con repositorios atados a un diario de deshacer. fn escribe directamente
// sobre el estado (el mutex queda tomado hasta el final) y, si falla o entra en pánico, el
// diario restaura solo lo que fn tocó.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newJournal(s.state)
	committed := false
	defer func() {
		if !committed {
			tx.rollback()
		}
	}()
	if err := fn(&MovementRepo{store: s, tx: tx}, &ProductRepo{store: s, tx: tx}); err != nil {
		return err
	}
	committed = true
	return nil
}

// view ejecuta fn sobre el estado; fuera de una transacción toma el mutex.
func (s *Store) view(tx *journal, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx.st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// journal guarda el valor previo de cada producto y movimiento que toca una transacción.
// Los movimientos agregados se deshacen truncando el libro a su largo inicial.
type journal struct {
	st          *state
	products    map[string]*entity.Product // nil = no existía
	movements   map[int]*entity.StockMovement
	movLen      int
	productSeq  int64
	movementSeq int64
}

func newJournal(st *state) *journal {
	return &journal{
		st:          st,
		products:    make(map[string]*entity.Product),
		movements:   make(map[int]*entity.StockMovement),
		movLen:      len(st.movements),
		productSeq:  st.productSeq,
		movementSeq: st.movementSeq,
	}
}

// saveProduct anota el producto antes de su primera modificación. Sin transacción no hace nada.
func (j *journal) saveProduct(id string) {
	if j == nil {
		return
	}
	if _, ok := j.products[id]; ok {
		return
	}
	var prev *entity.Product
	if p, ok := j.st.products[id]; ok {
		prev = copyProduct(p)
	}
	j.products[id] = prev
}

// saveMovement anota el movimiento i antes de modificarlo; los agregados en la
// transacción no hace falta anotarlos.
func (j *journal) saveMovement(i int) {
	if j == nil || i >= j.movLen {
		return
	}
	if _, ok := j.movements[i]; ok {
		return
	}
	j.movements[i] = copyMovement(j.st.movements[i])
}

func (j *journal) rollback() {
	st := j.st
	for i := j.movLen; i < len(st.movements); i++ {
		delete(st.movIndex, st.movements[i].ID)
		st.movements[i] = nil
	}
	st.movements = st.movements[:j.movLen]
	for i, m := range j.movements {
		st.movements[i] = m
	}
	for id, p := range j.products {
		if p == nil {
			delete(st.products, id)
		} else {
			st.products[id] = p
		}
	}
	st.productSeq = j.productSeq
	st.movementSeq = j.movementSeq
}

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func copyMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	if m.ReversedAt != nil {
		at := *m.ReversedAt
		c.ReversedAt = &at
	}
	return &c
}
