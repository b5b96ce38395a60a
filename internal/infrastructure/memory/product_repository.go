package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/restaurant-inventory/internal/domain"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria. Devuelve copias: mutar el resultado no altera el estado.
type ProductRepo struct {
	store *Store
	tx    *journal
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		r.tx.saveProduct(product.ID)
		st.productSeq++
		product.Seq = st.productSeq
		st.products[product.ID] = copyProduct(product)
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.store.view(r.tx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

// GetForUpdate dentro de Run el mutex del store ya serializa al escritor.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.store.view(r.tx, func(st *state) error {
		cur, ok := st.products[product.ID]
		if !ok {
			return domain.NotFound("producto %s", product.ID)
		}
		r.tx.saveProduct(product.ID)
		cur.Name = product.Name
		cur.CategoryID = product.CategoryID
		cur.UnitType = product.UnitType
		cur.OpeningStock = product.OpeningStock
		cur.UpdatedAt = product.UpdatedAt
		return nil
	})
}

func (r *ProductRepo) BumpLedgerVersion(_ context.Context, id string) error {
	return r.store.view(r.tx, func(st *state) error {
		cur, ok := st.products[id]
		if !ok {
			return domain.NotFound("producto %s", id)
		}
		r.tx.saveProduct(id)
		cur.LedgerVersion++
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.store.view(r.tx, func(st *state) error {
		if filter.IDs != nil {
			out = make([]*entity.Product, 0, len(filter.IDs))
			seen := make(map[string]struct{}, len(filter.IDs))
			for _, id := range filter.IDs {
				p, ok := st.products[id]
				if _, dup := seen[id]; !ok || dup {
					continue
				}
				seen[id] = struct{}{}
				if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
					continue
				}
				out = append(out, copyProduct(p))
			}
			return nil
		}
		out = make([]*entity.Product, 0, len(st.products))
		for _, p := range st.products {
			if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
				continue
			}
			out = append(out, copyProduct(p))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, err
}

// Delete replica el ON DELETE RESTRICT de PostgreSQL sobre stock_movements.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.NotFound("producto %s", id)
		}
		for _, m := range st.movements {
			if m.ProductID == id {
				return fmt.Errorf("%w: el producto %s tiene movimientos registrados", domain.ErrConflict, id)
			}
		}
		r.tx.saveProduct(id)
		delete(st.products, id)
		return nil
	})
}
