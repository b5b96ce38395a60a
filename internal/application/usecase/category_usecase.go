package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/restaurant-inventory/internal/application/dto"
	"github.com/jhoicas/restaurant-inventory/internal/domain"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/internal/domain/repository"
)

// CategoryUseCase categorías del catálogo (solo referencia y filtro).
type CategoryUseCase struct {
	repo repository.CategoryRepository
	now  func() time.Time
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo, now: time.Now}
}

// Create crea una categoría; ErrDuplicate si ya existe una con el mismo nombre.
func (uc *CategoryUseCase) Create(ctx context.Context, actor entity.Principal, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if !actor.CanManageCatalog {
		return nil, domain.Forbidden("solo un administrador puede crear categorías")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("el nombre es requerido")
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	c := &entity.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		CreatedAt:   uc.now(),
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	out := toCategoryResponse(c)
	return &out, nil
}

// List devuelve las categorías en orden alfabético con "Others" siempre al final.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	cats, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(cats, func(i, j int) bool {
		a, b := cats[i].Name, cats[j].Name
		aOthers, bOthers := entity.IsOthersCategory(a), entity.IsOthersCategory(b)
		if aOthers != bOthers {
			return bOthers
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})
	items := make([]dto.CategoryResponse, 0, len(cats))
	for _, c := range cats {
		items = append(items, toCategoryResponse(c))
	}
	return items, nil
}

func toCategoryResponse(c *entity.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}
