// Package stock implementa el motor de estado derivado: proyección del stock actual
// a partir del libro de movimientos, clasificación por estado y agregación para el dashboard.
//
// Todo en este paquete es cálculo puro sobre datos ya leídos del almacenamiento:
// sin reloj, sin aleatoriedad, sin I/O. Dos llamadas con el mismo libro devuelven
// exactamente el mismo decimal.
package stock

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/restaurant-inventory/internal/domain"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
)

// Project pliega los movimientos vivos del producto, del más antiguo al más reciente,
// partiendo de OpeningStock:
//
//	actual = OpeningStock + Σ IN − Σ OUT   (solo movimientos ACTIVE)
//
// Los movimientos de otros productos se ignoran. El resultado no se recorta: un valor
// negativo indica una salida excesiva y debe reportarse (ver Check).
func Project(product *entity.Product, movements []*entity.StockMovement) decimal.Decimal {
	own := make([]*entity.StockMovement, 0, len(movements))
	for _, m := range movements {
		if m.ProductID == product.ID {
			own = append(own, m)
		}
	}
	return fold(product.OpeningStock, own)
}

// ProjectAll calcula el stock de todos los productos en O(P + M): agrupa los movimientos
// por producto en una sola pasada y luego pliega cada grupo. Los productos sin movimientos
// quedan en su OpeningStock; los movimientos de productos desconocidos se descartan.
func ProjectAll(products []*entity.Product, movements []*entity.StockMovement) map[string]decimal.Decimal {
	byProduct := make(map[string][]*entity.StockMovement, len(products))
	for _, p := range products {
		byProduct[p.ID] = nil
	}
	for _, m := range movements {
		if group, ok := byProduct[m.ProductID]; ok {
			byProduct[m.ProductID] = append(group, m)
		}
	}

	out := make(map[string]decimal.Decimal, len(products))
	for _, p := range products {
		out[p.ID] = fold(p.OpeningStock, byProduct[p.ID])
	}
	return out
}

// Check devuelve *domain.ConsistencyError si current es negativo, nil en otro caso.
func Check(productID string, current decimal.Decimal) error {
	if current.IsNegative() {
		return &domain.ConsistencyError{ProductID: productID, Stock: current}
	}
	return nil
}

// fold ordena por Seq solo si hace falta (el almacenamiento ya entrega en orden)
// y acumula los deltas de los movimientos vivos.
func fold(opening decimal.Decimal, movements []*entity.StockMovement) decimal.Decimal {
	bySeq := func(i, j int) bool { return movements[i].Seq < movements[j].Seq }
	if !sort.SliceIsSorted(movements, bySeq) {
		sorted := make([]*entity.StockMovement, len(movements))
		copy(sorted, movements)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })
		movements = sorted
	}

	total := opening
	for _, m := range movements {
		if !m.IsLive() {
			continue
		}
		total = total.Add(m.Delta())
	}
	return total
}
