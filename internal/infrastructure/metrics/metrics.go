// Package metrics expone métricas Prometheus del servicio en un registro propio.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-stock/internal/application/ports"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

var _ ports.InventoryMetrics = (*Metrics)(nil)

const namespace = "inventario"

// Metrics colectores del servicio.
type Metrics struct {
	registry     *prometheus.Registry
	adjustments  *prometheus.CounterVec
	conflicts    prometheus.Counter
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New crea y registra los colectores.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_adjustments_total",
			Help:      "Ajustes de stock por tipo de movimiento y resultado.",
		}, []string{"type", "outcome"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_adjustment_conflicts_total",
			Help:      "Intentos de ajuste abortados por conflicto de concurrencia.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y estado.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	m.registry.MustRegister(
		m.adjustments,
		m.conflicts,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// AdjustmentApplied implementa ports.InventoryMetrics.
func (m *Metrics) AdjustmentApplied(movementType string) {
	m.adjustments.WithLabelValues(typeLabel(movementType), "applied").Inc()
}

// AdjustmentRejected implementa ports.InventoryMetrics.
func (m *Metrics) AdjustmentRejected(movementType, reason string) {
	m.adjustments.WithLabelValues(typeLabel(movementType), reason).Inc()
}

// ConflictDetected implementa ports.InventoryMetrics.
func (m *Metrics) ConflictDetected() {
	m.conflicts.Inc()
}

// Middleware registra conteo y duración por ruta (patrón, no URL concreta).
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		if path == "" {
			path = "unknown"
		}
		m.httpRequests.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler expone el registro en formato Prometheus.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Registry registro subyacente.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func typeLabel(movementType string) string {
	if entity.IsValidMovementType(movementType) {
		return movementType
	}
	return "UNKNOWN"
}
