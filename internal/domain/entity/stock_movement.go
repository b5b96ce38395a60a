package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de stock.
type MovementType string

const (
	MovementTypeIN  MovementType = "IN"  // entrada
	MovementTypeOUT MovementType = "OUT" // salida
)

// Valid indica si t es IN u OUT.
func (t MovementType) Valid() bool {
	return t == MovementTypeIN || t == MovementTypeOUT
}

// MovementState estado del movimiento. Un movimiento nunca se borra físicamente:
// la reversa lo pasa de ACTIVE a REVERSED y la proyección lo ignora.
type MovementState string

const (
	MovementActive   MovementState = "ACTIVE"
	MovementReversed MovementState = "REVERSED"
)

// StockMovement registro inmutable del libro de movimientos.
type StockMovement struct {
	ID        string
	ProductID string
	Type      MovementType
	Quantity  decimal.Decimal // siempre positiva; el signo lo da Type
	Notes     string
	// Seq estrictamente creciente, asignado por el almacenamiento; define el orden del fold
	// y desempata movimientos con el mismo CreatedAt.
	Seq           int64
	State         MovementState
	CreatedAt     time.Time
	CreatedBy     string // UserID
	CreatedByName string
	ReversedAt    *time.Time
	ReversedBy    string
}

// IsLive indica si el movimiento participa en la proyección.
func (m *StockMovement) IsLive() bool {
	return m.State != MovementReversed
}

// Delta devuelve el efecto con signo sobre el stock (+cantidad para IN, -cantidad para OUT).
func (m *StockMovement) Delta() decimal.Decimal {
	if m.Type == MovementTypeOUT {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
