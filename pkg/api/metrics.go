package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the API. A nil *Metrics
// records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	routes      *prometheus.CounterVec
	routeLength prometheus.Histogram
	rejected    prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bikeroute",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by path and status code",
		}, []string{"path", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bikeroute",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"path"}),
		routes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bikeroute",
			Subsystem: "routing",
			Name:      "queries_total",
			Help:      "Route queries by outcome",
		}, []string{"outcome"}),
		routeLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bikeroute",
			Subsystem: "routing",
			Name:      "route_length_meters",
			Help:      "Length of the routes found",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 12),
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bikeroute",
			Subsystem: "http",
			Name:      "rejected_total",
			Help:      "Requests rejected by the rate or concurrency limiter",
		}),
	}
	reg.MustRegister(m.requests, m.latency, m.routes, m.routeLength, m.rejected)
	return m
}

// Handler serves the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRequest(path string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(path).Observe(d.Seconds())
}

func (m *Metrics) observeRoute(outcome string, length float64) {
	if m == nil {
		return
	}
	m.routes.WithLabelValues(outcome).Inc()
	if outcome == outcomeOK {
		m.routeLength.Observe(length)
	}
}

func (m *Metrics) observeRejected() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}
