package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gopherpos"

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	Checkouts       *prometheus.CounterVec
	CheckoutAttempt prometheus.Histogram
	Collisions      prometheus.Counter
	PointsRetries   *prometheus.CounterVec
	Requests        *prometheus.CounterVec
	LatencyMS       *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "total",
			Help:      "Checkouts by outcome.",
		}, []string{"outcome"}),
		CheckoutAttempt: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "attempts",
			Help:      "Transactional attempts used per finished checkout.",
			Buckets:   []float64{1, 2, 3, 5},
		}),
		Collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "order_number_collisions_total",
			Help:      "Order number collisions that forced a retry.",
		}),
		PointsRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "points",
			Name:      "reconcile_total",
			Help:      "Deferred points reconciliations by result.",
		}, []string{"result"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Checkouts,
		m.CheckoutAttempt,
		m.Collisions,
		m.PointsRetries,
		m.Requests,
		m.LatencyMS,
	)
	return m
}

// ObserveCheckout counts a finished checkout. attempts is zero when the cart
// was rejected before any transaction ran.
func (m *Metrics) ObserveCheckout(outcome string, attempts int) {
	m.Checkouts.WithLabelValues(outcome).Inc()
	if attempts > 0 {
		m.CheckoutAttempt.Observe(float64(attempts))
	}
}

// ObserveCollision counts one order number collision.
func (m *Metrics) ObserveCollision() {
	m.Collisions.Inc()
}

// ObserveReconcile counts one deferred points attempt.
func (m *Metrics) ObserveReconcile(ok bool) {
	result := "credited"
	if !ok {
		result = "failed"
	}
	m.PointsRetries.WithLabelValues(result).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(handler string, status int, latencyMS float64) {
	m.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(latencyMS)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
