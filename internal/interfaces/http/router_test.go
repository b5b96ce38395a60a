package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/restaurant-inventory/internal/application/analytics"
	"github.com/jhoicas/restaurant-inventory/internal/application/dto"
	"github.com/jhoicas/restaurant-inventory/internal/application/inventory"
	"github.com/jhoicas/restaurant-inventory/internal/application/usecase"
	"github.com/jhoicas/restaurant-inventory/internal/domain/stock"
	"github.com/jhoicas/restaurant-inventory/internal/infrastructure/memory"
	"github.com/jhoicas/restaurant-inventory/internal/infrastructure/metrics"
	"github.com/jhoicas/restaurant-inventory/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/restaurant-inventory/internal/interfaces/http"
	"github.com/jhoicas/restaurant-inventory/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildTestApp arma la API completa sobre el almacenamiento en memoria.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	c, err := stock.NewClassifier(stock.DefaultLowStockRatio)
	require.NoError(t, err)

	store := memory.NewStore()
	cache := inventory.NewProjectionCache(true)
	recorder := metrics.NewRecorder("test")
	log := logger.Nop()

	ledger := inventory.NewLedgerUseCase(store, store.Products(), store.Movements(), c, cache, recorder, log,
		inventory.LedgerConfig{AllowNegative: true})
	query := inventory.NewStockQueryUseCase(store.Products(), store.Movements(), store.Categories(), c, cache, recorder, log)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Use(apphttp.RequestLogger(log))
	app.Use(recorder.Middleware())
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:  usecase.NewProductUseCase(store, store.Products(), store.Categories(), cache, log),
		CategoryUC: usecase.NewCategoryUseCase(store.Categories()),
		StockQuery: query,
		Ledger:     ledger,
		Dashboard:  appanalytics.NewDashboardUseCase(query, store.Categories(), recorder, pdf.NewMarotoPDFGenerator("es")),
		Metrics:    recorder,
		JWTSecret:  testJWTSecret,
		AppName:    "test",
	})
	return app
}

// call lanza la petición con el token del rol (vacío = sin Authorization) y decodifica en out.
func call(t *testing.T, app *fiber.App, method, path, role string, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createProduct(t *testing.T, app *fiber.App, name, opening string) dto.ProductResponse {
	t.Helper()
	var p dto.ProductResponse
	resp := call(t, app, http.MethodPost, "/api/products", "admin", dto.CreateProductRequest{
		Name: name, UnitType: "kg", OpeningStock: decimal.RequireFromString(opening),
	}, &p)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return p
}

func postMovement(t *testing.T, app *fiber.App, role, productID, typ, qty string) (*http.Response, dto.MovementResultResponse, dto.ErrorResponse) {
	t.Helper()
	req := dto.RecordMovementRequest{ProductID: productID, Type: typ, Quantity: decimal.RequireFromString(qty)}
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	resp := call(t, app, http.MethodPost, "/api/stock", role, string(raw), nil)
	defer resp.Body.Close()

	var ok dto.MovementResultResponse
	var fail dto.ErrorResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if resp.StatusCode < 300 {
		require.NoError(t, json.Unmarshal(body, &ok))
	} else {
		require.NoError(t, json.Unmarshal(body, &fail))
	}
	return resp, ok, fail
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo del libro de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_FlujoCompletoDeStock(t *testing.T) {
	app := buildTestApp(t)
	p := createProduct(t, app, "Harina", "100")

	resp, in, _ := postMovement(t, app, "staff", p.ID, "IN", "50")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, in.Stock.CurrentStock.Equal(decimal.NewFromInt(150)))

	resp, out, _ := postMovement(t, app, "admin", p.ID, "OUT", "140")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "LOW_STOCK", out.Stock.Status)

	var product dto.ProductStockResponse
	resp = call(t, app, http.MethodGet, "/api/products/"+p.ID, "staff", nil, &product)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, product.CurrentStock.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "Others", product.CategoryName)

	var reversed dto.MovementResultResponse
	resp = call(t, app, http.MethodDelete, "/api/stock/"+out.Movement.ID, "admin", nil, &reversed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "REVERSED", reversed.Movement.State)
	assert.True(t, reversed.Stock.CurrentStock.Equal(decimal.NewFromInt(150)))

	var st dto.StockResponse
	resp = call(t, app, http.MethodGet, "/api/products/"+p.ID+"/stock", "staff", nil, &st)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "IN_STOCK", st.Status)

	var history dto.MovementListResponse
	resp = call(t, app, http.MethodGet, "/api/stock?product_id="+p.ID, "staff", nil, &history)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, history.Items, 2)
	assert.Equal(t, out.Movement.ID, history.Items[0].ID)
	assert.Equal(t, 50, history.Page.Limit)
}

func TestAPI_StaffNoPuedeRetirarNiRevertir(t *testing.T) {
	app := buildTestApp(t)
	p := createProduct(t, app, "Aceite", "10")

	resp, _, fail := postMovement(t, app, "staff", p.ID, "OUT", "1")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", fail.Code)

	_, in, _ := postMovement(t, app, "staff", p.ID, "IN", "1")
	var e dto.ErrorResponse
	resp = call(t, app, http.MethodDelete, "/api/stock/"+in.Movement.ID, "staff", nil, &e)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var st dto.StockResponse
	call(t, app, http.MethodGet, "/api/products/"+p.ID+"/stock", "staff", nil, &st)
	assert.True(t, st.CurrentStock.Equal(decimal.NewFromInt(11)))
}

func TestAPI_MapeoDeErrores(t *testing.T) {
	app := buildTestApp(t)
	p := createProduct(t, app, "Sal", "1")

	resp, _, fail := postMovement(t, app, "admin", p.ID, "IN", "0")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", fail.Code)

	resp, _, fail = postMovement(t, app, "admin", p.ID, "IN", "1.23456")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", fail.Code)

	resp, _, fail = postMovement(t, app, "admin", "00000000-0000-0000-0000-00000000abcd", "IN", "1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", fail.Code)

	var e dto.ErrorResponse
	resp = call(t, app, http.MethodPost, "/api/stock", "admin", "{no es json", &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", e.Code)

	resp = call(t, app, http.MethodGet, "/api/products", "", nil, &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/no-existe", "", nil, &e)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", e.Code)

	postMovement(t, app, "admin", p.ID, "IN", "1")
	resp = call(t, app, http.MethodDelete, "/api/products/"+p.ID, "admin", nil, &e)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", e.Code)

	call(t, app, http.MethodPost, "/api/categories", "admin", dto.CreateCategoryRequest{Name: "Secos"}, nil)
	resp = call(t, app, http.MethodPost, "/api/categories", "admin", dto.CreateCategoryRequest{Name: "secos"}, &e)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", e.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_CatalogoYCategorias(t *testing.T) {
	app := buildTestApp(t)

	var cat dto.CategoryResponse
	resp := call(t, app, http.MethodPost, "/api/categories", "admin", dto.CreateCategoryRequest{Name: "Lácteos"}, &cat)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var e dto.ErrorResponse
	resp = call(t, app, http.MethodPost, "/api/products", "staff", dto.CreateProductRequest{Name: "Queso", UnitType: "kg"}, &e)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var queso dto.ProductResponse
	resp = call(t, app, http.MethodPost, "/api/products", "admin", dto.CreateProductRequest{
		Name: "Queso", UnitType: "kg", CategoryID: cat.ID, OpeningStock: decimal.NewFromInt(4),
	}, &queso)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Lácteos", queso.CategoryName)
	createProduct(t, app, "Pan", "3")

	var filtered dto.ProductListResponse
	resp = call(t, app, http.MethodGet, "/api/products?category_id="+cat.ID, "staff", nil, &filtered)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, filtered.Total)
	assert.Equal(t, "Queso", filtered.Items[0].Name)
	assert.Equal(t, "IN_STOCK", filtered.Items[0].Status)

	opening := decimal.NewFromInt(40)
	var updated dto.ProductResponse
	resp = call(t, app, http.MethodPut, "/api/products/"+queso.ID, "admin", dto.UpdateProductRequest{OpeningStock: &opening}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, updated.OpeningStock.Equal(opening))

	var cats []dto.CategoryResponse
	resp = call(t, app, http.MethodGet, "/api/categories", "staff", nil, &cats)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, cats, 1)

	galletas := createProduct(t, app, "Galletas", "1")
	resp = call(t, app, http.MethodDelete, "/api/products/"+galletas.ID, "admin", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Resumen, reporte y rutas públicas
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ResumenYReporte(t *testing.T) {
	app := buildTestApp(t)
	a := createProduct(t, app, "Arroz", "10")
	b := createProduct(t, app, "Frijol", "10")
	createProduct(t, app, "Lenteja", "10")
	postMovement(t, app, "admin", a.ID, "OUT", "10")
	postMovement(t, app, "admin", b.ID, "OUT", "9")

	var s dto.StockSummaryDTO
	resp := call(t, app, http.MethodGet, "/api/stock/summary", "staff", nil, &s)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, s.TotalProducts)
	assert.Equal(t, []string{a.ID}, s.OutOfStockProducts)
	assert.Equal(t, []string{b.ID}, s.LowStockProducts)
	assert.Equal(t, 2, s.InStockCount)

	resp = call(t, app, http.MethodGet, "/api/stock/report.pdf", "staff", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "inventario-")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestAPI_HealthMetricsYRequestID(t *testing.T) {
	app := buildTestApp(t)

	var health map[string]string
	resp := call(t, app, http.MethodGet, "/health", "", nil, &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = call(t, app, http.MethodGet, "/metrics", "", nil, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test_http_request_duration_seconds")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestAPI_PaginacionDelHistorial(t *testing.T) {
	app := buildTestApp(t)

	var history dto.MovementListResponse
	resp := call(t, app, http.MethodGet, "/api/stock?limit=9999&offset=-4", "staff", nil, &history)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 500, history.Page.Limit)
	assert.Equal(t, 0, history.Page.Offset)
	assert.NotNil(t, history.Items)

	var e dto.ErrorResponse
	resp = call(t, app, http.MethodGet, "/api/stock?limit=muchos", "staff", nil, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUERY", e.Code)
}
