package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/restaurant-inventory/internal/application/analytics"
)

// DashboardHandler maneja el resumen de inventario y el reporte PDF.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen de inventario.
// GET /api/stock/summary
//
// Respuesta: StockSummaryDTO (total_products, in_stock_count, out_of_stock_products,
// low_stock_products, negative_products, low_stock_ratio).
// in_stock_count = total_products - len(out_of_stock_products).
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// DownloadReport godoc
// @Summary      Reporte PDF de existencias
// @Tags         stock
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/report.pdf [get]
func (h *DashboardHandler) DownloadReport(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.uc.GenerateReport(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
