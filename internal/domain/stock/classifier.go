package stock

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/restaurant-inventory/internal/domain"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
)

// Status clasificación de un producto según su stock proyectado.
type Status string

const (
	StatusOutOfStock Status = "OUT_OF_STOCK"
	StatusLowStock   Status = "LOW_STOCK"
	StatusInStock    Status = "IN_STOCK"
)

// DefaultLowStockRatio umbral por defecto: 20% del stock inicial.
var DefaultLowStockRatio = decimal.RequireFromString("0.20")

// Classifier deriva el Status a partir de OpeningStock y el stock actual.
// El ratio es política configurable, no parte del motor.
type Classifier struct {
	ratio decimal.Decimal
}

// NewClassifier valida que ratio esté en [0, 1].
func NewClassifier(ratio decimal.Decimal) (*Classifier, error) {
	if ratio.IsNegative() || ratio.GreaterThan(decimal.NewFromInt(1)) {
		return nil, domain.Invalid("ratio de stock bajo fuera de rango: %s", ratio.String())
	}
	return &Classifier{ratio: ratio}, nil
}

// Ratio devuelve el umbral configurado.
func (c *Classifier) Ratio() decimal.Decimal { return c.ratio }

// Classify:
//   - OUT_OF_STOCK si current <= 0
//   - LOW_STOCK si current < opening * ratio (estricto)
//   - IN_STOCK en otro caso
//
// Con opening = 0 el umbral es 0 y LOW_STOCK nunca se produce.
func (c *Classifier) Classify(opening, current decimal.Decimal) Status {
	if current.LessThanOrEqual(decimal.Zero) {
		return StatusOutOfStock
	}
	if current.LessThan(opening.Mul(c.ratio)) {
		return StatusLowStock
	}
	return StatusInStock
}

// ClassifyProduct atajo sobre un producto.
func (c *Classifier) ClassifyProduct(p *entity.Product, current decimal.Decimal) Status {
	return c.Classify(p.OpeningStock, current)
}
