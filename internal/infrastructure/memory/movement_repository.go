package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/restaurant-inventory/internal/domain"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos en memoria, append-only y en orden de Seq.
type MovementRepo struct {
	store *Store
	tx    *journal
}

func (r *MovementRepo) Append(_ context.Context, movement *entity.StockMovement) error {
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.products[movement.ProductID]; !ok {
			return domain.NotFound("producto %s", movement.ProductID)
		}
		if movement.ID == "" {
			movement.ID = uuid.New().String()
		}
		if _, ok := st.movIndex[movement.ID]; ok {
			return domain.ErrDuplicate
		}
		st.movementSeq++
		movement.Seq = st.movementSeq
		st.movIndex[movement.ID] = len(st.movements)
		st.movements = append(st.movements, copyMovement(movement))
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.store.view(r.tx, func(st *state) error {
		if i, ok := st.movIndex[id]; ok {
			out = copyMovement(st.movements[i])
		}
		return nil
	})
	return out, err
}

// MarkReversed compare-and-set ACTIVE → REVERSED.
func (r *MovementRepo) MarkReversed(_ context.Context, id, reversedBy string, at time.Time) error {
	return r.store.view(r.tx, func(st *state) error {
		i, ok := st.movIndex[id]
		if !ok || !st.movements[i].IsLive() {
			return domain.NotFound("movimiento %s activo", id)
		}
		r.tx.saveMovement(i)
		m := st.movements[i]
		m.State = entity.MovementReversed
		m.ReversedAt = &at
		m.ReversedBy = reversedBy
		return nil
	})
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.store.view(r.tx, func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID {
				out = append(out, copyMovement(m))
			}
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) ListLive(_ context.Context, productIDs []string) ([]*entity.StockMovement, error) {
	var want map[string]struct{}
	if productIDs != nil {
		want = make(map[string]struct{}, len(productIDs))
		for _, id := range productIDs {
			want[id] = struct{}{}
		}
	}
	var out []*entity.StockMovement
	err := r.store.view(r.tx, func(st *state) error {
		for _, m := range st.movements {
			if !m.IsLive() {
				continue
			}
			if want != nil {
				if _, ok := want[m.ProductID]; !ok {
					continue
				}
			}
			out = append(out, copyMovement(m))
		}
		return nil
	})
	return out, err
}

// List del más reciente al más antiguo, con Offset/Limit.
func (r *MovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	out := []*entity.StockMovement{}
	err := r.store.view(r.tx, func(st *state) error {
		skipped := 0
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if filter.ProductID != "" && m.ProductID != filter.ProductID {
				continue
			}
			if skipped < filter.Offset {
				skipped++
				continue
			}
			if filter.Limit > 0 && len(out) >= filter.Limit {
				break
			}
			out = append(out, copyMovement(m))
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) ExistsForProduct(_ context.Context, productID string) (bool, error) {
	found := false
	err := r.store.view(r.tx, func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}
