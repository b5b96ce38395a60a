package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/restaurant-inventory/internal/application/analytics"
	"github.com/jhoicas/restaurant-inventory/internal/application/inventory"
	"github.com/jhoicas/restaurant-inventory/internal/application/usecase"
	"github.com/jhoicas/restaurant-inventory/internal/infrastructure/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *usecase.ProductUseCase
	CategoryUC *usecase.CategoryUseCase
	StockQuery *inventory.StockQueryUseCase
	Ledger     *inventory.LedgerUseCase
	Dashboard  *appanalytics.DashboardUseCase
	// Metrics opcional: si es nil no se expone /metrics.
	Metrics   *metrics.Recorder
	JWTSecret string
	AppName   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics.Handler())
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", categoryHandler.List)
	categories.Post("/", categoryHandler.Create)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.StockQuery)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/stock", productHandler.GetStock)

	// Libro de movimientos y reportes
	stock := protected.Group("/stock")
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	dashboardHandler := NewDashboardHandler(deps.Dashboard)
	stock.Get("/summary", dashboardHandler.GetSummary)
	stock.Get("/report.pdf", dashboardHandler.DownloadReport)
	stock.Get("/", inventoryHandler.ListMovements)
	stock.Post("/", inventoryHandler.PostMovement)
	stock.Delete("/:id", inventoryHandler.ReverseMovement)
}
