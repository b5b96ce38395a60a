// Package analytics contiene los casos de uso del dashboard de inventario y del
// reporte PDF de existencias.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/restaurant-inventory/internal/application/dto"
	"github.com/jhoicas/restaurant-inventory/internal/application/inventory"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/internal/domain/repository"
	"github.com/jhoicas/restaurant-inventory/internal/domain/stock"
)

// StockReportGenerator genera el PDF del reporte de existencias.
type StockReportGenerator interface {
	GenerateStockReport(ctx context.Context, report dto.StockReport) ([]byte, error)
}

// DashboardUseCase resume el estado del inventario.
//
// No guarda conteos: cada llamada re-deriva la clasificación desde el catálogo y el libro
// de movimientos, así que el resumen nunca discrepa del stock por producto.
type DashboardUseCase struct {
	stockQuery   *inventory.StockQueryUseCase
	categoryRepo repository.CategoryRepository
	metrics      inventory.Metrics
	generator    StockReportGenerator
	now          func() time.Time
}

// NewDashboardUseCase construye el caso de uso. generator puede ser nil si no se expone el PDF.
func NewDashboardUseCase(
	stockQuery *inventory.StockQueryUseCase,
	categoryRepo repository.CategoryRepository,
	metrics inventory.Metrics,
	generator StockReportGenerator,
) *DashboardUseCase {
	if metrics == nil {
		metrics = inventory.NopMetrics{}
	}
	return &DashboardUseCase{
		stockQuery:   stockQuery,
		categoryRepo: categoryRepo,
		metrics:      metrics,
		generator:    generator,
		now:          time.Now,
	}
}

// GetSummary total de productos, agotados, con stock bajo e "en stock" (total − agotados).
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.StockSummaryDTO, error) {
	products, projected, err := uc.stockQuery.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: proyección: %w", err)
	}
	s := stock.BuildSummary(products, projected, uc.stockQuery.Classifier())
	uc.metrics.StockSummary(s)
	out := toSummaryDTO(s, uc.stockQuery.Classifier())
	return &out, nil
}

// GenerateReport arma el reporte de existencias y lo entrega como PDF.
//
// Dos lecturas en paralelo:
//  1. Snapshot()            → productos + stock proyectado
//  2. categoryRepo.List()   → nombres de categoría
func (uc *DashboardUseCase) GenerateReport(ctx context.Context) (pdfBytes []byte, filename string, err error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("dashboard: generador de PDF no configurado")
	}

	type snapshotResult struct {
		products  []*entity.Product
		projected map[string]decimal.Decimal
		err       error
	}
	type categoriesResult struct {
		names map[string]string
		err   error
	}

	snapCh := make(chan snapshotResult, 1)
	catCh := make(chan categoriesResult, 1)

	go func() {
		products, projected, err := uc.stockQuery.Snapshot(ctx)
		snapCh <- snapshotResult{products, projected, err}
	}()
	go func() {
		cats, err := uc.categoryRepo.List(ctx)
		if err != nil {
			catCh <- categoriesResult{err: err}
			return
		}
		names := make(map[string]string, len(cats))
		for _, c := range cats {
			names[c.ID] = c.Name
		}
		catCh <- categoriesResult{names: names}
	}()

	snap := <-snapCh
	cats := <-catCh

	if snap.err != nil {
		return nil, "", fmt.Errorf("dashboard: proyección: %w", snap.err)
	}
	if cats.err != nil {
		return nil, "", fmt.Errorf("dashboard: categorías: %w", cats.err)
	}

	c := uc.stockQuery.Classifier()
	s := stock.BuildSummary(snap.products, snap.projected, c)
	uc.metrics.StockSummary(s)

	now := uc.now()
	report := dto.StockReport{
		Title:       "Reporte de existencias",
		GeneratedAt: now,
		Rows:        make([]dto.StockReportRow, 0, len(snap.products)),
		Summary:     toSummaryDTO(s, c),
	}
	for _, p := range snap.products {
		current := snap.projected[p.ID]
		resp := inventory.ToProductResponse(p, cats.names)
		report.Rows = append(report.Rows, dto.StockReportRow{
			ProductName:  p.Name,
			CategoryName: resp.CategoryName,
			UnitType:     string(p.UnitType),
			OpeningStock: p.OpeningStock,
			CurrentStock: current,
			Status:       string(c.ClassifyProduct(p, current)),
		})
	}

	pdfBytes, err = uc.generator.GenerateStockReport(ctx, report)
	if err != nil {
		return nil, "", err
	}
	return pdfBytes, "inventario-" + now.Format("2006-01-02") + ".pdf", nil
}

func toSummaryDTO(s stock.Summary, c *stock.Classifier) dto.StockSummaryDTO {
	return dto.StockSummaryDTO{
		TotalProducts:      s.TotalProducts,
		InStockCount:       s.InStockCount(),
		OutOfStockProducts: s.OutOfStockProducts,
		LowStockProducts:   s.LowStockProducts,
		NegativeProducts:   s.NegativeProducts,
		LowStockRatio:      c.Ratio(),
	}
}
