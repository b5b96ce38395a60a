package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/stock.
type RecordMovementRequest struct {
	ProductID string          `json:"product_id"`
	Type      string          `json:"type"` // IN | OUT
	Quantity  decimal.Decimal `json:"quantity"`
	Notes     string          `json:"notes,omitempty"`
}

// MovementResponse fila del historial de movimientos.
type MovementResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	UnitType      string          `json:"unit_type"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	Notes         string          `json:"notes"`
	Seq           int64           `json:"seq"`
	State         string          `json:"state"` // ACTIVE | REVERSED
	CreatedAt     time.Time       `json:"created_at"`
	CreatedBy     string          `json:"created_by"`
	CreatedByName string          `json:"created_by_name"`
	ReversedAt    *time.Time      `json:"reversed_at,omitempty"`
	ReversedBy    string          `json:"reversed_by,omitempty"`
}

// MovementListResponse historial paginado, más reciente primero.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockResponse stock derivado de un producto.
// Warning no vacío indica stock proyectado negativo (sobre-retiro); el valor no se recorta.
type StockResponse struct {
	ProductID         string          `json:"product_id"`
	OpeningStock      decimal.Decimal `json:"opening_stock"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	Status            string          `json:"status"`
	Warning           string          `json:"warning,omitempty"`
}

// MovementResultResponse respuesta de registrar o revertir un movimiento:
// el movimiento afectado y el stock resultante del producto.
type MovementResultResponse struct {
	Movement MovementResponse `json:"movement"`
	Stock    StockResponse    `json:"stock"`
}
