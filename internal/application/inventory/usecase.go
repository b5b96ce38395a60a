package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/restaurant-inventory/internal/application/dto"
	"github.com/jhoicas/restaurant-inventory/internal/domain"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/internal/domain/repository"
	"github.com/jhoicas/restaurant-inventory/internal/domain/stock"
	"github.com/jhoicas/restaurant-inventory/pkg/logger"
)

// LedgerConfig política de escritura del libro.
type LedgerConfig struct {
	// AllowNegative permite OUT (o reversas de IN) que dejen el stock bajo cero.
	// Con false se rechazan con domain.ErrInsufficientStock sin escribir nada.
	AllowNegative bool
}

// LedgerUseCase registra y revierte movimientos de stock de forma transaccional:
// bloquea la fila del producto (SELECT FOR UPDATE), agrega el movimiento con Seq creciente,
// incrementa LedgerVersion y hace Commit o Rollback.
type LedgerUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	classifier   *stock.Classifier
	cache        *ProjectionCache
	metrics      Metrics
	log          *logger.Logger
	cfg          LedgerConfig
	now          func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
	classifier *stock.Classifier,
	cache *ProjectionCache,
	metrics Metrics,
	log *logger.Logger,
	cfg LedgerConfig,
) *LedgerUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		classifier:   classifier,
		cache:        cache,
		metrics:      metrics,
		log:          log.Component("ledger"),
		cfg:          cfg,
		now:          time.Now,
	}
}

// MovementInputDTO entrada para registrar un movimiento.
type MovementInputDTO struct {
	ProductID string
	Type      entity.MovementType
	Quantity  decimal.Decimal
	Notes     string
}

// PostMovement adapta el request HTTP a RecordMovement.
func (uc *LedgerUseCase) PostMovement(ctx context.Context, actor entity.Principal, in dto.RecordMovementRequest) (*dto.MovementResultResponse, error) {
	return uc.RecordMovement(ctx, actor, MovementInputDTO{
		ProductID: in.ProductID,
		Type:      entity.MovementType(in.Type),
		Quantity:  in.Quantity,
		Notes:     in.Notes,
	})
}

// RecordMovement valida y agrega un movimiento al libro del producto.
//
// Errores: ErrInvalidInput (tipo desconocido, cantidad <= 0 o fuera de NUMERIC(18, 4)), ErrForbidden (OUT sin
// CanRemoveStock), ErrNotFound (producto inexistente), ErrInsufficientStock (OUT que deja
// stock negativo con AllowNegative=false).
func (uc *LedgerUseCase) RecordMovement(ctx context.Context, actor entity.Principal, input MovementInputDTO) (*dto.MovementResultResponse, error) {
	if input.ProductID == "" {
		return nil, domain.Invalid("product_id es requerido")
	}
	if !input.Type.Valid() {
		return nil, domain.Invalid("tipo de movimiento %q inválido (IN u OUT)", input.Type)
	}
	if !input.Quantity.IsPositive() {
		return nil, domain.Invalid("la cantidad debe ser mayor a cero")
	}
	if !entity.QuantityFits(input.Quantity) {
		return nil, domain.Invalid("la cantidad admite hasta %d decimales y debe ser menor a %s",
			entity.QuantityScale, entity.MaxQuantity.String())
	}
	if input.Type == entity.MovementTypeOUT && !actor.CanRemoveStock {
		return nil, domain.Forbidden("solo un administrador puede retirar stock")
	}

	var (
		mov     *entity.StockMovement
		product *entity.Product
		current decimal.Decimal
	)
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		var err error
		// Bloquea la fila del producto para serializar escrituras concurrentes del mismo libro
		product, err = productRepo.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NotFound("producto %s", input.ProductID)
		}

		history, err := movRepo.ListByProduct(ctx, product.ID)
		if err != nil {
			return err
		}
		before := stock.Project(product, history)

		mov = &entity.StockMovement{
			ID:            uuid.New().String(),
			ProductID:     product.ID,
			Type:          input.Type,
			Quantity:      input.Quantity,
			Notes:         input.Notes,
			State:         entity.MovementActive,
			CreatedAt:     uc.now(),
			CreatedBy:     actor.UserID,
			CreatedByName: actor.Name,
		}
		current = before.Add(mov.Delta())
		if current.IsNegative() && input.Type == entity.MovementTypeOUT && !uc.cfg.AllowNegative {
			return fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, before.String(), input.Quantity.String())
		}

		if err := movRepo.Append(ctx, mov); err != nil {
			return err
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

	uc.cache.Put(product, current)
	uc.metrics.MovementRecorded(mov.Type)
	uc.log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", product.ID).
		Str("type", string(mov.Type)).
		Str("quantity", mov.Quantity.String()).
		Int64("seq", mov.Seq).
		Str("user_id", actor.UserID).
		Msg("movimiento registrado")

	return uc.result(mov, product, current), nil
}

// DeleteAndReverseMovement anula el efecto de un movimiento sin borrarlo (ACTIVE → REVERSED).
//
// Errores: ErrForbidden sin CanRemoveStock; ErrNotFound si no existe o ya fue revertido
// (revertir dos veces falla, nunca doble-niega); ErrInsufficientStock si revertir una
// entrada deja el stock negativo con AllowNegative=false.
func (uc *LedgerUseCase) DeleteAndReverseMovement(ctx context.Context, actor entity.Principal, movementID string) (*dto.MovementResultResponse, error) {
	if !actor.CanRemoveStock {
		return nil, domain.Forbidden("solo un administrador puede revertir movimientos")
	}
	if movementID == "" {
		return nil, domain.Invalid("id de movimiento requerido")
	}

	var (
		mov     *entity.StockMovement
		product *entity.Product
		current decimal.Decimal
	)
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		var err error
		mov, err = movRepo.GetByID(ctx, movementID)
		if err != nil {
			return err
		}
		if mov == nil || !mov.IsLive() {
			return domain.NotFound("movimiento %s no existe o ya fue revertido", movementID)
		}
		product, err = productRepo.GetForUpdate(ctx, mov.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NotFound("producto %s", mov.ProductID)
		}

		history, err := movRepo.ListByProduct(ctx, product.ID)
		if err != nil {
			return err
		}
		before := stock.Project(product, history)
		current = before.Sub(mov.Delta())
		if current.IsNegative() && mov.Type == entity.MovementTypeIN && !uc.cfg.AllowNegative {
			return fmt.Errorf("%w: revertir la entrada dejaría %s", domain.ErrInsufficientStock, current.String())
		}

		at := uc.now()
		// Compare-and-set: un segundo reversor concurrente recibe ErrNotFound
		if err := movRepo.MarkReversed(ctx, mov.ID, actor.UserID, at); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NotFound("movimiento %s no existe o ya fue revertido", movementID)
			}
			return err
		}
		mov.State = entity.MovementReversed
		mov.ReversedAt = &at
		mov.ReversedBy = actor.UserID

		if err := productRepo.BumpLedgerVersion(ctx, product.ID); err != nil {
			return err
		}
		product.LedgerVersion++
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Put(product, current)
	uc.metrics.MovementReversed()
	uc.log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", product.ID).
		Str("user_id", actor.UserID).
		Msg("movimiento revertido")

	return uc.result(mov, product, current), nil
}

// ListMovements historial para mostrar, más reciente primero, con nombre y unidad del producto.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.ProductID != "" {
		p, err := uc.productRepo.GetByID(ctx, filter.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NotFound("producto %s", filter.ProductID)
		}
	}
	movs, err := uc.movementRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	// Solo los productos que aparecen en la página
	pageIDs := make([]string, 0, len(movs))
	for _, m := range movs {
		pageIDs = append(pageIDs, m.ProductID)
	}
	products, err := uc.productRepo.List(ctx, repository.ProductFilter{IDs: pageIDs})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		items = append(items, toMovementResponse(m, byID[m.ProductID]))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

func (uc *LedgerUseCase) result(mov *entity.StockMovement, product *entity.Product, current decimal.Decimal) *dto.MovementResultResponse {
	st := toStockResponse(product, current, uc.classifier)
	if st.Warning != "" {
		uc.metrics.NegativeStock(product.ID)
		uc.log.Warn().
			Str("product_id", product.ID).
			Str("current_stock", current.String()).
			Msg("stock proyectado negativo")
	}
	return &dto.MovementResultResponse{
		Movement: toMovementResponse(mov, product),
		Stock:    st,
	}
}

func toMovementResponse(m *entity.StockMovement, p *entity.Product) dto.MovementResponse {
	out := dto.MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Type:          string(m.Type),
		Quantity:      m.Quantity,
		Notes:         m.Notes,
		Seq:           m.Seq,
		State:         string(m.State),
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
		CreatedByName: m.CreatedByName,
		ReversedAt:    m.ReversedAt,
		ReversedBy:    m.ReversedBy,
	}
	if p != nil {
		out.ProductName = p.Name
		out.UnitType = string(p.UnitType)
	}
	return out
}

func toStockResponse(p *entity.Product, current decimal.Decimal, c *stock.Classifier) dto.StockResponse {
	out := dto.StockResponse{
		ProductID:         p.ID,
		OpeningStock:      p.OpeningStock,
		CurrentStock:      current,
		LowStockThreshold: p.OpeningStock.Mul(c.Ratio()),
		Status:            string(c.ClassifyProduct(p, current)),
	}
	if err := stock.Check(p.ID, current); err != nil {
		out.Warning = err.Error()
	}
	return out
}
