package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	_ "github.com/jhoicas/restaurant-inventory/docs"
	appanalytics "github.com/jhoicas/restaurant-inventory/internal/application/analytics"
	"github.com/jhoicas/restaurant-inventory/internal/application/inventory"
	"github.com/jhoicas/restaurant-inventory/internal/application/usecase"
	"github.com/jhoicas/restaurant-inventory/internal/domain/repository"
	"github.com/jhoicas/restaurant-inventory/internal/domain/stock"
	"github.com/jhoicas/restaurant-inventory/internal/infrastructure/memory"
	"github.com/jhoicas/restaurant-inventory/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/restaurant-inventory/internal/infrastructure/pdf"
	"github.com/jhoicas/restaurant-inventory/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/restaurant-inventory/internal/interfaces/http"
	"github.com/jhoicas/restaurant-inventory/pkg/config"
	"github.com/jhoicas/restaurant-inventory/pkg/logger"
)

// @title                       Restaurant Inventory API
// @version                     1.0
// @description                 Libro de movimientos de stock y estado derivado del inventario.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization

// storage repositorios y ejecutor transaccional del backend elegido.
type storage struct {
	txRunner   inventory.TxRunner
	products   repository.ProductRepository
	movements  repository.MovementRepository
	categories repository.CategoryRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	var recorder *metrics.Recorder
	var metricsPort inventory.Metrics = inventory.NopMetrics{}
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder(cfg.Metrics.Prefix)
		metricsPort = recorder
	}

	classifier, err := stock.NewClassifier(decimal.NewFromFloat(cfg.Stock.LowStockRatio))
	if err != nil {
		log.Fatal().Err(err).Msg("política de stock bajo")
	}
	cache := inventory.NewProjectionCache(cfg.Stock.ProjectionCache)

	ledgerUC := inventory.NewLedgerUseCase(
		store.txRunner, store.products, store.movements,
		classifier, cache, metricsPort, log,
		inventory.LedgerConfig{AllowNegative: cfg.Stock.AllowNegative},
	)
	stockQuery := inventory.NewStockQueryUseCase(
		store.products, store.movements, store.categories,
		classifier, cache, metricsPort, log,
	)
	productUC := usecase.NewProductUseCase(store.txRunner, store.products, store.categories, cache, log)
	categoryUC := usecase.NewCategoryUseCase(store.categories)

	// PDF: reporte de existencias
	pdfGenerator := infrapdf.NewMarotoPDFGenerator("es")
	dashboardUC := appanalytics.NewDashboardUseCase(stockQuery, store.categories, metricsPort, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httpRouter.ErrorHandler,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))
	if recorder != nil {
		app.Use(recorder.Middleware())
	}

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerFile != "" {
		if _, statErr := os.Stat(cfg.HTTP.SwaggerFile); statErr == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.HTTP.SwaggerFile,
				Path:     "docs",
				Title:    "Restaurant Inventory API",
			}))
		} else {
			log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger.json no encontrado, UI deshabilitada")
		}
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:  productUC,
		CategoryUC: categoryUC,
		StockQuery: stockQuery,
		Ledger:     ledgerUC,
		Dashboard:  dashboardUC,
		Metrics:    recorder,
		JWTSecret:  cfg.JWT.Secret,
		AppName:    cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			txRunner:   s,
			products:   s.Products(),
			movements:  s.Movements(),
			categories: s.Categories(),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &storage{
		txRunner:   postgres.NewTxRunner(pool),
		products:   postgres.NewProductRepository(pool),
		movements:  postgres.NewMovementRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		close:      pool.Close,
	}, nil
}
