// Package metrics exposes Prometheus collectors for rate fetching and caching.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ratesvc"

// Fetch outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeThrottled = "throttled"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	fetchTotal     *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	cacheLookups   *prometheus.CounterVec
	coalesced      prometheus.Counter
	flightWaiters  prometheus.Histogram
	storeErrors    *prometheus.CounterVec
	tableAge       prometheus.Gauge
	favoritesCount prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New creates collectors registered on a fresh registry, together with Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "provider",
				Name:      "fetch_total",
				Help:      "Network fetches by outcome and error kind.",
			},
			[]string{"outcome", "kind"},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "provider",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of network fetches.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
			},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Freshness checks by result.",
			},
			[]string{"result"},
		),
		coalesced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "coordinator",
				Name:      "coalesced_waiters_total",
				Help:      "Callers that joined an in-flight fetch instead of starting one.",
			},
		),
		flightWaiters: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "coordinator",
				Name:      "flight_waiters",
				Help:      "Callers that shared one completed fetch generation.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8), // 1 to 128
			},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "Persistence failures by operation.",
			},
			[]string{"op"},
		),
		tableAge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "table_fetched_timestamp_seconds",
				Help:      "Unix time the current rate table was fetched.",
			},
		),
		favoritesCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "favorites",
				Name:      "count",
				Help:      "Number of favorite currencies.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(
		m.fetchTotal, m.fetchDuration, m.cacheLookups, m.coalesced, m.flightWaiters,
		m.storeErrors, m.tableAge, m.favoritesCount,
		m.httpRequests, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one network fetch. kind is empty on success.
func (m *Metrics) ObserveFetch(outcome, kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(outcome, kind).Inc()
	if outcome != OutcomeThrottled {
		m.fetchDuration.Observe(d.Seconds())
	}
}

// ObserveCacheLookup records a freshness check.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCoalesced records a caller that joined an existing fetch.
func (m *Metrics) ObserveCoalesced() {
	if m == nil {
		return
	}
	m.coalesced.Inc()
}

// ObserveFlight records how many callers shared one completed fetch generation.
func (m *Metrics) ObserveFlight(waiters int) {
	if m == nil {
		return
	}
	m.flightWaiters.Observe(float64(waiters))
}

// ObserveStoreError records a persistence failure for op (load, save, clear).
func (m *Metrics) ObserveStoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

// SetTableFetchedAt records the fetch time of the current table.
func (m *Metrics) SetTableFetchedAt(t time.Time) {
	if m == nil {
		return
	}
	m.tableAge.Set(float64(t.Unix()))
}

// SetFavorites records the favorites count.
func (m *Metrics) SetFavorites(n int) {
	if m == nil {
		return
	}
	m.favoritesCount.Set(float64(n))
}

// ObserveHTTP records one handled request. route is the matched pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
