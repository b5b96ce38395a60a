package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/restaurant-inventory/internal/domain"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo categorías en memoria; el nombre es único sin distinguir mayúsculas.
type CategoryRepo struct {
	store *Store
}

func (r *CategoryRepo) Create(_ context.Context, category *entity.Category) error {
	return r.store.view(nil, func(st *state) error {
		for _, c := range st.categories {
			if c.ID == category.ID || strings.EqualFold(c.Name, category.Name) {
				return domain.ErrDuplicate
			}
		}
		c := *category
		st.categories[c.ID] = &c
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.store.view(nil, func(st *state) error {
		if c, ok := st.categories[id]; ok {
			cp := *c
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	var out *entity.Category
	err := r.store.view(nil, func(st *state) error {
		for _, c := range st.categories {
			if strings.EqualFold(c.Name, name) {
				cp := *c
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.store.view(nil, func(st *state) error {
		out = make([]*entity.Category, 0, len(st.categories))
		for _, c := range st.categories {
			cp := *c
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}
