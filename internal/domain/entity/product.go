package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un insumo del restaurante.
// OpeningStock es la línea base de la proyección; el stock actual nunca se persiste,
// se deriva de los movimientos (ver domain/stock).
type Product struct {
	ID           string
	Name         string
	CategoryID   string // vacío = categoría implícita "Others"
	UnitType     UnitType
	OpeningStock decimal.Decimal
	// Seq orden de creación en el catálogo (asignado por el repositorio).
	Seq int64
	// LedgerVersion se incrementa en la misma transacción que cualquier cambio del libro
	// de movimientos o de la línea base; solo sirve para invalidar la caché de proyección.
	LedgerVersion int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
