package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/restaurant-inventory/internal/application/dto"
	"github.com/jhoicas/restaurant-inventory/internal/application/inventory"
	"github.com/jhoicas/restaurant-inventory/internal/domain"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/internal/domain/repository"
	"github.com/jhoicas/restaurant-inventory/internal/domain/stock"
	"github.com/jhoicas/restaurant-inventory/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	admin = entity.PrincipalForRole("u-admin", "Ana", entity.RoleAdmin)
	staff = entity.PrincipalForRole("u-staff", "Luis", entity.RoleStaff)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// countingMetrics cuenta las llamadas al puerto de métricas.
type countingMetrics struct {
	mu        sync.Mutex
	recorded  int
	reversed  int
	negative  int
	hits      int
	misses    int
	summaries int
}

func (m *countingMetrics) MovementRecorded(entity.MovementType) { m.mu.Lock(); m.recorded++; m.mu.Unlock() }
func (m *countingMetrics) MovementReversed()                    { m.mu.Lock(); m.reversed++; m.mu.Unlock() }
func (m *countingMetrics) NegativeStock(string)                 { m.mu.Lock(); m.negative++; m.mu.Unlock() }
func (m *countingMetrics) StockSummary(stock.Summary)           { m.mu.Lock(); m.summaries++; m.mu.Unlock() }
func (m *countingMetrics) ProjectionCache(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

type fixture struct {
	store   *memory.Store
	ledger  *inventory.LedgerUseCase
	query   *inventory.StockQueryUseCase
	cache   *inventory.ProjectionCache
	metrics *countingMetrics
}

func newFixture(t *testing.T, cfg inventory.LedgerConfig) *fixture {
	t.Helper()
	c, err := stock.NewClassifier(stock.DefaultLowStockRatio)
	require.NoError(t, err)
	store := memory.NewStore()
	cache := inventory.NewProjectionCache(true)
	m := &countingMetrics{}
	return &fixture{
		store:   store,
		ledger:  inventory.NewLedgerUseCase(store, store.Products(), store.Movements(), c, cache, m, nil, cfg),
		query:   inventory.NewStockQueryUseCase(store.Products(), store.Movements(), store.Categories(), c, cache, m, nil),
		cache:   cache,
		metrics: m,
	}
}

func (f *fixture) product(t *testing.T, name, opening string) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:           uuid.NewString(),
		Name:         name,
		UnitType:     entity.UnitTypeKg,
		OpeningStock: dec(opening),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *fixture) post(t *testing.T, actor entity.Principal, productID string, typ entity.MovementType, qty string) *dto.MovementResultResponse {
	t.Helper()
	out, err := f.ledger.RecordMovement(context.Background(), actor, inventory.MovementInputDTO{
		ProductID: productID, Type: typ, Quantity: dec(qty),
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) current(t *testing.T, productID string) *dto.StockResponse {
	t.Helper()
	st, err := f.query.GetCurrentStock(context.Background(), productID)
	require.NoError(t, err)
	return st
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro y reversa
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_EscenarioCompleto(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})
	p := f.product(t, "Harina", "100")

	out := f.post(t, staff, p.ID, entity.MovementTypeIN, "50")
	assert.True(t, out.Stock.CurrentStock.Equal(dec("150")))
	assert.Equal(t, string(stock.StatusInStock), out.Stock.Status)
	assert.Equal(t, "Harina", out.Movement.ProductName)
	assert.Equal(t, "Luis", out.Movement.CreatedByName)

	out = f.post(t, admin, p.ID, entity.MovementTypeOUT, "140")
	assert.True(t, out.Stock.CurrentStock.Equal(dec("10")))
	assert.Equal(t, string(stock.StatusLowStock), out.Stock.Status)

	last := f.post(t, admin, p.ID, entity.MovementTypeOUT, "10")
	assert.True(t, last.Stock.CurrentStock.IsZero())
	assert.Equal(t, string(stock.StatusOutOfStock), last.Stock.Status)
	assert.Empty(t, last.Stock.Warning)

	rev, err := f.ledger.DeleteAndReverseMovement(context.Background(), admin, last.Movement.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.MovementReversed), rev.Movement.State)
	assert.True(t, rev.Stock.CurrentStock.Equal(dec("10")))
	assert.Equal(t, string(stock.StatusLowStock), rev.Stock.Status)

	st := f.current(t, p.ID)
	assert.True(t, st.CurrentStock.Equal(dec("10")))
	assert.True(t, st.LowStockThreshold.Equal(dec("20")))
	assert.Equal(t, 3, f.metrics.recorded)
	assert.Equal(t, 1, f.metrics.reversed)
}

func TestLedger_StaffNoPuedeRetirar(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})
	p := f.product(t, "Aceite", "10")

	_, err := f.ledger.RecordMovement(context.Background(), staff, inventory.MovementInputDTO{
		ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: dec("1"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	movs, err := f.store.Movements().ListByProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, movs, "un OUT rechazado no debe dejar rastro en el libro")
	assert.True(t, f.current(t, p.ID).CurrentStock.Equal(dec("10")))
}

func TestLedger_StaffNoPuedeRevertir(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})
	p := f.product(t, "Sal", "5")
	in := f.post(t, staff, p.ID, entity.MovementTypeIN, "2")

	_, err := f.ledger.DeleteAndReverseMovement(context.Background(), staff, in.Movement.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.True(t, f.current(t, p.ID).CurrentStock.Equal(dec("7")))
}

func TestLedger_ValidacionDeEntrada(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})
	p := f.product(t, "Azúcar", "1")

	cases := []struct {
		name  string
		input inventory.MovementInputDTO
		want  error
	}{
		{"cantidad cero", inventory.MovementInputDTO{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: decimal.Zero}, domain.ErrInvalidInput},
		{"cantidad negativa", inventory.MovementInputDTO{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: dec("-3")}, domain.ErrInvalidInput},
		{"tipo desconocido", inventory.MovementInputDTO{ProductID: p.ID, Type: "ADJUST", Quantity: dec("1")}, domain.ErrInvalidInput},
		{"sin producto", inventory.MovementInputDTO{Type: entity.MovementTypeIN, Quantity: dec("1")}, domain.ErrInvalidInput},
		{"producto inexistente", inventory.MovementInputDTO{ProductID: uuid.NewString(), Type: entity.MovementTypeIN, Quantity: dec("1")}, domain.ErrNotFound},
		{"más de cuatro decimales", inventory.MovementInputDTO{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: dec("1.23456")}, domain.ErrInvalidInput},
		{"redondea a cero", inventory.MovementInputDTO{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: dec("0.00001")}, domain.ErrInvalidInput},
		{"desborda NUMERIC(18,4)", inventory.MovementInputDTO{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: dec("1e15")}, domain.ErrInvalidInput},
		{"salida con más de cuatro decimales", inventory.MovementInputDTO{ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: dec("0.12345")}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.RecordMovement(context.Background(), admin, tc.input)
			assert.True(t, errors.Is(err, tc.want), "error inesperado: %v", err)
		})
	}

	movs, err := f.store.Movements().ListByProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, movs, "ningún movimiento rechazado debe quedar en el libro")
}

func TestLedger_CantidadEnLaEscalaPersistida(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})
	p := f.product(t, "Sal", "1")

	f.post(t, staff, p.ID, entity.MovementTypeIN, "0.0001")
	res := f.post(t, staff, p.ID, entity.MovementTypeIN, "2.50000")

	assert.True(t, res.Stock.CurrentStock.Equal(dec("3.5001")))
	assert.True(t, f.current(t, p.ID).CurrentStock.Equal(dec("3.5001")))
}

func TestLedger_DobleReversaFalla(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})
	p := f.product(t, "Tomate", "10")
	in := f.post(t, staff, p.ID, entity.MovementTypeIN, "5")

	_, err := f.ledger.DeleteAndReverseMovement(context.Background(), admin, in.Movement.ID)
	require.NoError(t, err)

	_, err = f.ledger.DeleteAndReverseMovement(context.Background(), admin, in.Movement.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, f.current(t, p.ID).CurrentStock.Equal(dec("10")), "la segunda reversa no debe restar otra vez")

	_, err = f.ledger.DeleteAndReverseMovement(context.Background(), admin, uuid.NewString())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLedger_NegativoPermitidoConAdvertencia(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})
	p := f.product(t, "Leche", "3")

	out := f.post(t, admin, p.ID, entity.MovementTypeOUT, "5")
	assert.True(t, out.Stock.CurrentStock.Equal(dec("-2")), "el stock negativo no se recorta a cero")
	assert.Equal(t, string(stock.StatusOutOfStock), out.Stock.Status)
	assert.NotEmpty(t, out.Stock.Warning)
	assert.Equal(t, 1, f.metrics.negative)
}

func TestLedger_NegativoRechazado(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: false})
	p := f.product(t, "Leche", "3")

	_, err := f.ledger.RecordMovement(context.Background(), admin, inventory.MovementInputDTO{
		ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: dec("5"),
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	f.post(t, admin, p.ID, entity.MovementTypeOUT, "3")
	assert.True(t, f.current(t, p.ID).CurrentStock.IsZero())
}

func TestLedger_ReversaDeEntradaRechazadaSiQuedaNegativo(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: false})
	p := f.product(t, "Queso", "0")
	in := f.post(t, staff, p.ID, entity.MovementTypeIN, "4")
	f.post(t, admin, p.ID, entity.MovementTypeOUT, "3")

	_, err := f.ledger.DeleteAndReverseMovement(context.Background(), admin, in.Movement.ID)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	got, err := f.store.Movements().GetByID(context.Background(), in.Movement.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementActive, got.State)
}

func TestLedger_EscriturasConcurrentesNoSePierden(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})
	p := f.product(t, "Arroz", "100")

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.RecordMovement(context.Background(), staff, inventory.MovementInputDTO{
				ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: dec("1.5"),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, f.current(t, p.ID).CurrentStock.Equal(dec("130")))
	movs, err := f.store.Movements().ListByProduct(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, movs, workers)
	for i := 1; i < len(movs); i++ {
		assert.Greater(t, movs[i].Seq, movs[i-1].Seq)
	}
}

func TestLedger_ReversasConcurrentesSoloUnaGana(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})
	p := f.product(t, "Pollo", "10")
	out := f.post(t, admin, p.ID, entity.MovementTypeOUT, "4")

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.ledger.DeleteAndReverseMovement(context.Background(), admin, out.Movement.ID); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.True(t, f.current(t, p.ID).CurrentStock.Equal(dec("10")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial
// ──────────────────────────────────────────────────────────────────────────────

func TestListMovements_MasRecientePrimero(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})
	a := f.product(t, "Papa", "10")
	b := f.product(t, "Cebolla", "10")
	first := f.post(t, staff, a.ID, entity.MovementTypeIN, "1")
	f.post(t, staff, b.ID, entity.MovementTypeIN, "2")
	third := f.post(t, admin, a.ID, entity.MovementTypeOUT, "3")

	all, err := f.ledger.ListMovements(context.Background(), repository.MovementFilter{Limit: 50})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	assert.Equal(t, third.Movement.ID, all.Items[0].ID)
	assert.Equal(t, "kg", all.Items[0].UnitType)

	onlyA, err := f.ledger.ListMovements(context.Background(), repository.MovementFilter{ProductID: a.ID, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, onlyA.Items, 1)
	assert.Equal(t, first.Movement.ID, onlyA.Items[0].ID)
	assert.Equal(t, "Papa", onlyA.Items[0].ProductName)

	_, err = f.ledger.ListMovements(context.Background(), repository.MovementFilter{ProductID: uuid.NewString()})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// productListSpy registra los filtros con que se lista el catálogo.
type productListSpy struct {
	repository.ProductRepository
	filters []repository.ProductFilter
}

func (s *productListSpy) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	s.filters = append(s.filters, filter)
	return s.ProductRepository.List(ctx, filter)
}

func TestListMovements_SoloCargaLosProductosDeLaPagina(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})
	a := f.product(t, "Papa", "10")
	b := f.product(t, "Cebolla", "10")
	f.product(t, "Ajo", "10")
	f.post(t, staff, a.ID, entity.MovementTypeIN, "1")
	f.post(t, staff, b.ID, entity.MovementTypeIN, "2")
	f.post(t, staff, a.ID, entity.MovementTypeIN, "3")

	c, err := stock.NewClassifier(stock.DefaultLowStockRatio)
	require.NoError(t, err)
	spy := &productListSpy{ProductRepository: f.store.Products()}
	ledger := inventory.NewLedgerUseCase(f.store, spy, f.store.Movements(), c, f.cache, nil, nil,
		inventory.LedgerConfig{AllowNegative: true})

	page, err := ledger.ListMovements(context.Background(), repository.MovementFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Papa", page.Items[0].ProductName)
	require.Len(t, spy.filters, 1)
	assert.Equal(t, []string{a.ID}, spy.filters[0].IDs)

	empty, err := ledger.ListMovements(context.Background(), repository.MovementFilter{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	require.Len(t, spy.filters, 2)
	assert.NotNil(t, spy.filters[1].IDs)
	assert.Empty(t, spy.filters[1].IDs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas y caché de proyección
// ──────────────────────────────────────────────────────────────────────────────

func TestStockQuery_CacheSeInvalidaConCadaEscritura(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})
	p := f.product(t, "Harina", "100")

	assert.True(t, f.current(t, p.ID).CurrentStock.Equal(dec("100")))
	assert.Equal(t, 1, f.metrics.misses)
	assert.True(t, f.current(t, p.ID).CurrentStock.Equal(dec("100")))
	assert.Equal(t, 1, f.metrics.hits)

	f.post(t, staff, p.ID, entity.MovementTypeIN, "25")
	assert.True(t, f.current(t, p.ID).CurrentStock.Equal(dec("125")))

	stored, err := f.store.Products().GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.LedgerVersion)
	cached, ok := f.cache.Get(stored)
	require.True(t, ok)
	assert.True(t, cached.Equal(dec("125")))
}

func TestStockQuery_ProductoInexistente(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})

	_, err := f.query.GetCurrentStock(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = f.query.GetStatus(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = f.query.GetProduct(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStockQuery_ListadoConEstadoYCategoriaOthers(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})
	a := f.product(t, "Vino", "10")
	b := f.product(t, "Cerveza", "10")
	f.post(t, admin, a.ID, entity.MovementTypeOUT, "10")
	f.post(t, admin, b.ID, entity.MovementTypeOUT, "9")

	list, err := f.query.ListProductsWithStock(context.Background(), repository.ProductFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "Vino", list.Items[0].Name)
	assert.Equal(t, string(stock.StatusOutOfStock), list.Items[0].Status)
	assert.Equal(t, string(stock.StatusLowStock), list.Items[1].Status)
	assert.Equal(t, entity.OthersCategoryName, list.Items[1].CategoryName)

	status, err := f.query.GetStatus(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, stock.StatusLowStock, status)
}

func TestStockQuery_ProyeccionCoincideSinCache(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{AllowNegative: true})
	p := f.product(t, "Huevos", "12")
	f.post(t, staff, p.ID, entity.MovementTypeIN, "6")
	out := f.post(t, admin, p.ID, entity.MovementTypeOUT, "4")
	_, err := f.ledger.DeleteAndReverseMovement(context.Background(), admin, out.Movement.ID)
	require.NoError(t, err)

	c, err := stock.NewClassifier(stock.DefaultLowStockRatio)
	require.NoError(t, err)
	cold := inventory.NewStockQueryUseCase(f.store.Products(), f.store.Movements(), nil, c, nil, nil, nil)
	st, err := cold.GetCurrentStock(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, st.CurrentStock.Equal(f.current(t, p.ID).CurrentStock))
	assert.True(t, st.CurrentStock.Equal(dec("18")))
}
