package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/restaurant-inventory/internal/application/dto"
	"github.com/jhoicas/restaurant-inventory/internal/application/inventory"
	"github.com/jhoicas/restaurant-inventory/internal/domain"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/internal/domain/repository"
	"github.com/jhoicas/restaurant-inventory/pkg/logger"
)

// ProductUseCase casos de uso del catálogo. El stock no es un campo del producto:
// solo OpeningStock (línea base) se edita aquí; el resto se maneja vía movimientos.
type ProductUseCase struct {
	txRunner     inventory.TxRunner
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cache        *inventory.ProjectionCache
	log          *logger.Logger
	now          func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner inventory.TxRunner,
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	cache *inventory.ProjectionCache,
	log *logger.Logger,
) *ProductUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{
		txRunner:     txRunner,
		repo:         repo,
		categoryRepo: categoryRepo,
		cache:        cache,
		log:          log.Component("catalog"),
		now:          time.Now,
	}
}

// Create crea un producto. Requiere CanManageCatalog.
func (uc *ProductUseCase) Create(ctx context.Context, actor entity.Principal, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !actor.CanManageCatalog {
		return nil, domain.Forbidden("solo un administrador puede crear productos")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("el nombre es requerido")
	}
	unit := entity.UnitType(in.UnitType)
	if !unit.Valid() {
		return nil, domain.Invalid("unidad %q inválida", in.UnitType)
	}
	if in.OpeningStock.IsNegative() {
		return nil, domain.Invalid("el stock inicial no puede ser negativo")
	}
	if !entity.QuantityFits(in.OpeningStock) {
		return nil, openingStockOutOfRange()
	}
	names, err := uc.checkCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Name:         name,
		CategoryID:   in.CategoryID,
		UnitType:     unit,
		OpeningStock: in.OpeningStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", product.ID).Str("name", product.Name).Msg("producto creado")

	out := inventory.ToProductResponse(product, names)
	return &out, nil
}

// GetByID obtiene un producto sin stock; NotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto %s", id)
	}
	names, err := uc.categoryNames(ctx)
	if err != nil {
		return nil, err
	}
	out := inventory.ToProductResponse(product, names)
	return &out, nil
}

// Update actualización parcial. Cambiar OpeningStock redefine la línea base de toda la
// historia del producto (no es un movimiento) e invalida su proyección.
func (uc *ProductUseCase) Update(ctx context.Context, actor entity.Principal, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if !actor.CanManageCatalog {
		return nil, domain.Forbidden("solo un administrador puede editar productos")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Invalid("el nombre no puede quedar vacío")
	}
	if in.UnitType != nil && !entity.UnitType(*in.UnitType).Valid() {
		return nil, domain.Invalid("unidad %q inválida", *in.UnitType)
	}
	if in.OpeningStock != nil && in.OpeningStock.IsNegative() {
		return nil, domain.Invalid("el stock inicial no puede ser negativo")
	}
	if in.OpeningStock != nil && !entity.QuantityFits(*in.OpeningStock) {
		return nil, openingStockOutOfRange()
	}
	var names map[string]string
	if in.CategoryID != nil {
		var err error
		if names, err = uc.checkCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	var product *entity.Product
	err := uc.txRunner.Run(ctx, func(_ repository.MovementRepository, productRepo repository.ProductRepository) error {
		var err error
		product, err = productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NotFound("producto %s", id)
		}
		baselineChanged := applyProductChanges(product, in)
		product.UpdatedAt = uc.now()
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}
		if !baselineChanged {
			return nil
		}
		if err := productRepo.BumpLedgerVersion(ctx, product.ID); err != nil {
			return err
		}
		product.LedgerVersion++
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", product.ID).Msg("producto actualizado")

	if names == nil {
		if names, err = uc.categoryNames(ctx); err != nil {
			return nil, err
		}
	}
	out := inventory.ToProductResponse(product, names)
	return &out, nil
}

// List lista el catálogo en orden de creación.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	names, err := uc.categoryNames(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, inventory.ToProductResponse(p, names))
	}
	return items, nil
}

// Delete elimina un producto sin historia. Con cualquier movimiento (vivo o revertido)
// devuelve ErrConflict: borrar el producto dejaría huérfano su libro.
func (uc *ProductUseCase) Delete(ctx context.Context, actor entity.Principal, id string) error {
	if !actor.CanManageCatalog {
		return domain.Forbidden("solo un administrador puede eliminar productos")
	}
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		product, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NotFound("producto %s", id)
		}
		used, err := movRepo.ExistsForProduct(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("%w: el producto %s tiene movimientos registrados", domain.ErrConflict, id)
		}
		return productRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.cache.Forget(id)
	uc.log.Info().Str("product_id", id).Msg("producto eliminado")
	return nil
}

// applyProductChanges aplica los campos presentes; devuelve true si cambió OpeningStock.
func applyProductChanges(p *entity.Product, in dto.UpdateProductRequest) bool {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}
	if in.UnitType != nil {
		p.UnitType = entity.UnitType(*in.UnitType)
	}
	if in.OpeningStock == nil || in.OpeningStock.Equal(p.OpeningStock) {
		return false
	}
	p.OpeningStock = *in.OpeningStock
	return true
}

// checkCategory valida que la categoría exista (vacía = "Others") y devuelve el mapa de nombres.
func (uc *ProductUseCase) checkCategory(ctx context.Context, categoryID string) (map[string]string, error) {
	names, err := uc.categoryNames(ctx)
	if err != nil {
		return nil, err
	}
	if categoryID == "" {
		return names, nil
	}
	if _, ok := names[categoryID]; !ok {
		return nil, domain.NotFound("categoría %s", categoryID)
	}
	return names, nil
}

func (uc *ProductUseCase) categoryNames(ctx context.Context) (map[string]string, error) {
	cats, err := uc.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}

func openingStockOutOfRange() error {
	return domain.Invalid("el stock inicial admite hasta %d decimales y debe ser menor a %s",
		entity.QuantityScale, entity.MaxQuantity.String())
}
