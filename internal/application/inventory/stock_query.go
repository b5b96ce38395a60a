package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/restaurant-inventory/internal/application/dto"
	"github.com/jhoicas/restaurant-inventory/internal/domain"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/internal/domain/repository"
	"github.com/jhoicas/restaurant-inventory/internal/domain/stock"
	"github.com/jhoicas/restaurant-inventory/pkg/logger"
)

// StockQueryUseCase lecturas derivadas: stock actual, estado y catálogo con stock.
// Cada lectura es función pura del estado del almacenamiento; la caché solo evita
// volver a plegar libros cuya LedgerVersion no cambió.
type StockQueryUseCase struct {
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	categoryRepo repository.CategoryRepository
	classifier   *stock.Classifier
	cache        *ProjectionCache
	metrics      Metrics
	log          *logger.Logger
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
	categoryRepo repository.CategoryRepository,
	classifier *stock.Classifier,
	cache *ProjectionCache,
	metrics Metrics,
	log *logger.Logger,
) *StockQueryUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StockQueryUseCase{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		categoryRepo: categoryRepo,
		classifier:   classifier,
		cache:        cache,
		metrics:      metrics,
		log:          log.Component("stock"),
	}
}

// Classifier expone la política de clasificación vigente.
func (uc *StockQueryUseCase) Classifier() *stock.Classifier { return uc.classifier }

// GetCurrentStock proyecta el stock del producto. Un stock negativo se devuelve tal cual
// con Warning (ConsistencyError como advertencia, no como fallo).
func (uc *StockQueryUseCase) GetCurrentStock(ctx context.Context, productID string) (*dto.StockResponse, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto %s", productID)
	}
	projected, err := uc.ProjectAll(ctx, []*entity.Product{p})
	if err != nil {
		return nil, err
	}
	out := toStockResponse(p, projected[p.ID], uc.classifier)
	return &out, nil
}

// GetStatus clasifica el producto según su stock proyectado.
func (uc *StockQueryUseCase) GetStatus(ctx context.Context, productID string) (stock.Status, error) {
	st, err := uc.GetCurrentStock(ctx, productID)
	if err != nil {
		return "", err
	}
	return stock.Status(st.Status), nil
}

// GetProduct devuelve un producto con su stock y estado.
func (uc *StockQueryUseCase) GetProduct(ctx context.Context, productID string) (*dto.ProductStockResponse, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto %s", productID)
	}
	list, err := uc.withStock(ctx, []*entity.Product{p})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ListProductsWithStock lista el catálogo (orden de creación) con stock y estado.
func (uc *StockQueryUseCase) ListProductsWithStock(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	products, err := uc.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items, err := uc.withStock(ctx, products)
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{Items: items, Total: len(items)}, nil
}

// Snapshot lee el catálogo completo y su proyección: la entrada de BuildSummary.
func (uc *StockQueryUseCase) Snapshot(ctx context.Context) ([]*entity.Product, map[string]decimal.Decimal, error) {
	products, err := uc.productRepo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, nil, err
	}
	projected, err := uc.ProjectAll(ctx, products)
	if err != nil {
		return nil, nil, err
	}
	return products, projected, nil
}

// ProjectAll proyecta el stock de los productos dados. Los productos con entrada vigente en
// la caché no se vuelven a plegar; el resto se resuelve con una sola lectura de movimientos
// vivos y stock.ProjectAll (O(productos + movimientos)).
//
// Los productos deben haberse leído antes de llamar (ver ProjectionCache).
func (uc *StockQueryUseCase) ProjectAll(ctx context.Context, products []*entity.Product) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(products))
	var misses []*entity.Product
	for _, p := range products {
		if v, ok := uc.cache.Get(p); ok {
			out[p.ID] = v
			uc.metrics.ProjectionCache(true)
			continue
		}
		uc.metrics.ProjectionCache(false)
		misses = append(misses, p)
	}
	if len(misses) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(misses))
	for _, p := range misses {
		ids = append(ids, p.ID)
	}
	movs, err := uc.movementRepo.ListLive(ctx, ids)
	if err != nil {
		return nil, err
	}
	for id, v := range stock.ProjectAll(misses, movs) {
		out[id] = v
	}
	for _, p := range misses {
		uc.cache.Put(p, out[p.ID])
	}
	return out, nil
}

func (uc *StockQueryUseCase) withStock(ctx context.Context, products []*entity.Product) ([]dto.ProductStockResponse, error) {
	projected, err := uc.ProjectAll(ctx, products)
	if err != nil {
		return nil, err
	}
	names, err := uc.categoryNames(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ProductStockResponse, 0, len(products))
	for _, p := range products {
		current := projected[p.ID]
		item := dto.ProductStockResponse{
			ProductResponse: ToProductResponse(p, names),
			CurrentStock:    current,
			Status:          string(uc.classifier.ClassifyProduct(p, current)),
		}
		if err := stock.Check(p.ID, current); err != nil {
			item.Warning = err.Error()
			uc.metrics.NegativeStock(p.ID)
			uc.log.Warn().Str("product_id", p.ID).Str("current_stock", current.String()).Msg("stock proyectado negativo")
		}
		items = append(items, item)
	}
	return items, nil
}

func (uc *StockQueryUseCase) categoryNames(ctx context.Context) (map[string]string, error) {
	if uc.categoryRepo == nil {
		return nil, nil
	}
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

// ToProductResponse mapea el producto; sin categoría (o categoría desconocida) cae en "Others".
func ToProductResponse(p *entity.Product, categoryNames map[string]string) dto.ProductResponse {
	name, ok := categoryNames[p.CategoryID]
	if p.CategoryID == "" || !ok {
		name = entity.OthersCategoryName
	}
	return dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		CategoryID:   p.CategoryID,
		CategoryName: name,
		UnitType:     string(p.UnitType),
		OpeningStock: p.OpeningStock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
