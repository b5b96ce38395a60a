package entity

import "github.com/shopspring/decimal"

// QuantityScale decimales con que se persisten cantidades y stock inicial.
// Debe coincidir con NUMERIC(18, 4) de stock_movements.quantity y products.opening_stock.
const QuantityScale = 4

// MaxQuantity cota exclusiva del valor absoluto que cabe en NUMERIC(18, 4).
var MaxQuantity = decimal.New(1, 18-QuantityScale)

// QuantityFits indica si q se guarda tal cual, sin redondeo ni desbordamiento.
func QuantityFits(q decimal.Decimal) bool {
	return q.Abs().LessThan(MaxQuantity) && q.Round(QuantityScale).Equal(q)
}
