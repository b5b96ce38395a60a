package inventory

import (
	"context"

	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/internal/domain/repository"
	"github.com/jhoicas/restaurant-inventory/internal/domain/stock"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza atomicidad por operación: si fn falla no queda ningún cambio visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// Metrics puerto de observabilidad del libro de movimientos.
type Metrics interface {
	MovementRecorded(t entity.MovementType)
	MovementReversed()
	NegativeStock(productID string)
	ProjectionCache(hit bool)
	StockSummary(s stock.Summary)
}

// NopMetrics descarta todas las métricas.
type NopMetrics struct{}

func (NopMetrics) MovementRecorded(entity.MovementType) {}
func (NopMetrics) MovementReversed()                   {}
func (NopMetrics) NegativeStock(string)                {}
func (NopMetrics) ProjectionCache(bool)                {}
func (NopMetrics) StockSummary(stock.Summary)          {}
