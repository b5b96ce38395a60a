package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/restaurant-inventory/internal/application/dto"
	"github.com/jhoicas/restaurant-inventory/internal/infrastructure/pdf"
)

func TestGenerateStockReport_DevuelvePDF(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator("es")
	report := dto.StockReport{
		Title:       "Reporte de existencias",
		GeneratedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Rows: []dto.StockReportRow{
			{ProductName: "Harina", CategoryName: "Secos", UnitType: "kg", OpeningStock: decimal.NewFromInt(100), CurrentStock: decimal.RequireFromString("1250.5"), Status: "IN_STOCK"},
			{ProductName: "Leche", CategoryName: "Others", UnitType: "litre", OpeningStock: decimal.NewFromInt(10), CurrentStock: decimal.NewFromInt(-2), Status: "OUT_OF_STOCK"},
		},
		Summary: dto.StockSummaryDTO{
			TotalProducts:      2,
			InStockCount:       1,
			OutOfStockProducts: []string{"leche"},
			LowStockProducts:   []string{},
			NegativeProducts:   []string{"leche"},
			LowStockRatio:      decimal.RequireFromString("0.2"),
		},
	}

	out, err := g.GenerateStockReport(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateStockReport_SinFilas(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator("no-es-un-idioma")
	out, err := g.GenerateStockReport(context.Background(), dto.StockReport{Title: "Vacío", GeneratedAt: time.Now()})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
