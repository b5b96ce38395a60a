// Package pdf genera el reporte de existencias del restaurante.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título del reporte   │  fecha de generación          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: total │ en stock │ stock bajo │ agotados           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Categoría | Unidad | Inicial | Actual | Estado │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: umbral de stock bajo y advertencias de negativos    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/restaurant-inventory/internal/application/analytics"
	"github.com/jhoicas/restaurant-inventory/internal/application/dto"
	"github.com/jhoicas/restaurant-inventory/internal/domain/stock"
)

var _ analytics.StockReportGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWarn    = &props.Color{Red: 191, Green: 120, Blue: 0}
	colorDanger  = &props.Color{Red: 178, Green: 34, Blue: 34}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa analytics.StockReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador. lang define el formato de las cantidades
// (separadores de miles y decimales); vacío o inválido usa español.
func NewMarotoPDFGenerator(lang string) *MarotoPDFGenerator {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Spanish
	}
	return &MarotoPDFGenerator{printer: message.NewPrinter(tag)}
}

// GenerateStockReport genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateStockReport(_ context.Context, report dto.StockReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(report.Title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report.Summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range g.tableRows(report.Rows) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(g.footerRow(report.Summary))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report dto.StockReport) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(report.Title, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 2,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 4, Color: colorGray,
			}),
		),
	)
}

func summaryRow(s dto.StockSummaryDTO) core.Row {
	cell := func(label string, value int, c *props.Color) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(fmt.Sprintf("%d", value), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Center, Color: c, Top: 6,
			}),
		)
	}
	return row.New(14).Add(
		cell("Productos", s.TotalProducts, colorPrimary),
		cell("En stock", s.InStockCount, colorPrimary),
		cell("Stock bajo", len(s.LowStockProducts), colorWarn),
		cell("Agotados", len(s.OutOfStockProducts), colorDanger),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 3, align.Left),
		h("Categoría", 2, align.Left),
		h("Unidad", 1, align.Center),
		h("Inicial", 2, align.Right),
		h("Actual", 2, align.Right),
		h("Estado", 2, align.Center),
	)
}

func (g *MarotoPDFGenerator) tableRows(rows []dto.StockReportRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		result = append(result, row.New(7).Add(
			col.New(3).Add(text.New(r.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(r.CategoryName, props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
			col.New(1).Add(text.New(r.UnitType, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(g.quantity(r.OpeningStock), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.quantity(r.CurrentStock), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1, Color: statusColor(r.Status),
			})),
			col.New(2).Add(text.New(statusLabel(r.Status), props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Center, Top: 1.5, Color: statusColor(r.Status),
			})),
		))
	}
	return result
}

func (g *MarotoPDFGenerator) footerRow(s dto.StockSummaryDTO) core.Row {
	pct := s.LowStockRatio.Mul(decimal.NewFromInt(100))
	legend := g.printer.Sprintf("Stock bajo: menos del %v%% del stock inicial.", pct.InexactFloat64())
	if n := len(s.NegativeProducts); n > 0 {
		legend += g.printer.Sprintf(" %d producto(s) con stock negativo: revisar salidas registradas.", n)
	}
	return row.New(8).Add(col.New(12).Add(
		text.New(legend, props.Text{Size: 7, Color: colorGray, Top: 2}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// quantity formatea con separadores del idioma; las cantidades se muestran con hasta 3 decimales.
func (g *MarotoPDFGenerator) quantity(d decimal.Decimal) string {
	r := d.Round(3)
	if r.Equal(r.Truncate(0)) {
		return g.printer.Sprintf("%d", r.IntPart())
	}
	return g.printer.Sprintf("%.3f", r.InexactFloat64())
}

func statusLabel(status string) string {
	switch stock.Status(status) {
	case stock.StatusOutOfStock:
		return "AGOTADO"
	case stock.StatusLowStock:
		return "BAJO"
	default:
		return "OK"
	}
}

func statusColor(status string) *props.Color {
	switch stock.Status(status) {
	case stock.StatusOutOfStock:
		return colorDanger
	case stock.StatusLowStock:
		return colorWarn
	default:
		return nil
	}
}
