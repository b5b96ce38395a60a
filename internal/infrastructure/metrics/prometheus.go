// Package metrics expone las métricas del libro de movimientos y de HTTP en formato Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/restaurant-inventory/internal/application/inventory"
	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
	"github.com/jhoicas/restaurant-inventory/internal/domain/stock"
)

var _ inventory.Metrics = (*Recorder)(nil)

// Recorder registra las métricas en un registry propio (no el global), así cada
// instancia de la app y cada test tiene el suyo.
type Recorder struct {
	registry *prometheus.Registry

	movementsTotal     *prometheus.CounterVec
	reversalsTotal     prometheus.Counter
	negativeStockTotal prometheus.Counter
	projectionCache    *prometheus.CounterVec
	productsByStatus   *prometheus.GaugeVec
	negativeProducts   prometheus.Gauge
	requestDuration    *prometheus.HistogramVec
	requestErrorsTotal *prometheus.CounterVec
}

// NewRecorder crea el registry con el prefijo dado (METRICS_PREFIX) más los collectors de Go y proceso.
func NewRecorder(namespace string) *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		movementsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Movimientos de stock registrados por tipo",
		}, []string{"type"}),
		reversalsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_reversals_total",
			Help:      "Movimientos revertidos",
		}),
		negativeStockTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_negative_projections_total",
			Help:      "Proyecciones que dieron stock negativo (advertencias de consistencia)",
		}),
		projectionCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_projection_cache_total",
			Help:      "Consultas a la caché de proyección por resultado",
		}, []string{"result"}),
		productsByStatus: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stock_products",
			Help:      "Productos por estado en el último resumen calculado",
		}, []string{"status"}),
		negativeProducts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stock_negative_products",
			Help:      "Productos con stock proyectado negativo en el último resumen",
		}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Respuestas HTTP con status >= 400",
		}, []string{"method", "path", "status"}),
	}
}

// Registry expone el registry (tests y exportadores adicionales).
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) MovementRecorded(t entity.MovementType) {
	r.movementsTotal.WithLabelValues(string(t)).Inc()
}

func (r *Recorder) MovementReversed() { r.reversalsTotal.Inc() }

func (r *Recorder) NegativeStock(string) { r.negativeStockTotal.Inc() }

func (r *Recorder) ProjectionCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.projectionCache.WithLabelValues(result).Inc()
}

// StockSummary fija los gauges con la partición del último resumen.
func (r *Recorder) StockSummary(s stock.Summary) {
	r.productsByStatus.WithLabelValues(string(stock.StatusOutOfStock)).Set(float64(len(s.OutOfStockProducts)))
	r.productsByStatus.WithLabelValues(string(stock.StatusLowStock)).Set(float64(len(s.LowStockProducts)))
	r.productsByStatus.WithLabelValues(string(stock.StatusInStock)).Set(float64(s.HealthyCount()))
	r.negativeProducts.Set(float64(len(s.NegativeProducts)))
}

// Middleware mide duración y errores por ruta (patrón de la ruta, no la URL, para acotar cardinalidad).
func (r *Recorder) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < 400 {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		code := strconv.Itoa(status)
		r.requestDuration.WithLabelValues(c.Method(), path, code).Observe(time.Since(start).Seconds())
		if status >= 400 {
			r.requestErrorsTotal.WithLabelValues(c.Method(), path, code).Inc()
		}
		return err
	}
}

// Handler sirve /metrics.
func (r *Recorder) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}
