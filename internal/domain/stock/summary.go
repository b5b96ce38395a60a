package stock

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
)

// Summary conteos del dashboard. Cada producto cae en exactamente una clase.
type Summary struct {
	TotalProducts      int
	OutOfStockProducts []string // IDs, en orden de catálogo
	LowStockProducts   []string
	NegativeProducts   []string // subconjunto de OutOfStockProducts con stock < 0
}

// InStockCount productos con existencias (incluye los de stock bajo).
// Se deriva de los otros dos conteos para que nunca discrepe de ellos.
func (s Summary) InStockCount() int {
	return s.TotalProducts - len(s.OutOfStockProducts)
}

// HealthyCount productos IN_STOCK estrictos (ni agotados ni bajos).
func (s Summary) HealthyCount() int {
	return s.TotalProducts - len(s.OutOfStockProducts) - len(s.LowStockProducts)
}

// BuildSummary recorre los productos una vez, clasifica con el stock proyectado y particiona.
// Un producto ausente de projected se evalúa con su OpeningStock (sin movimientos).
func BuildSummary(products []*entity.Product, projected map[string]decimal.Decimal, c *Classifier) Summary {
	s := Summary{
		TotalProducts:      len(products),
		OutOfStockProducts: []string{},
		LowStockProducts:   []string{},
		NegativeProducts:   []string{},
	}
	for _, p := range products {
		current, ok := projected[p.ID]
		if !ok {
			current = p.OpeningStock
		}
		switch c.ClassifyProduct(p, current) {
		case StatusOutOfStock:
			s.OutOfStockProducts = append(s.OutOfStockProducts, p.ID)
			if current.IsNegative() {
				s.NegativeProducts = append(s.NegativeProducts, p.ID)
			}
		case StatusLowStock:
			s.LowStockProducts = append(s.LowStockProducts, p.ID)
		}
	}
	return s
}
