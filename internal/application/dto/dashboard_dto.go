package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockSummaryDTO respuesta de GET /api/stock/summary.
// InStockCount = TotalProducts - len(OutOfStockProducts): incluye los productos con stock bajo.
type StockSummaryDTO struct {
	TotalProducts      int             `json:"total_products"`
	InStockCount       int             `json:"in_stock_count"`
	OutOfStockProducts []string        `json:"out_of_stock_products"`
	LowStockProducts   []string        `json:"low_stock_products"`
	NegativeProducts   []string        `json:"negative_products"` // agotados con stock < 0 (advertencia)
	LowStockRatio      decimal.Decimal `json:"low_stock_ratio"`
}

// StockReportRow fila del reporte PDF de inventario.
type StockReportRow struct {
	ProductName  string
	CategoryName string
	UnitType     string
	OpeningStock decimal.Decimal
	CurrentStock decimal.Decimal
	Status       string
}

// StockReport datos del reporte PDF de inventario.
type StockReport struct {
	Title       string
	GeneratedAt time.Time
	Rows        []StockReportRow
	Summary     StockSummaryDTO
}
