// Package metrics holds the Prometheus collectors of the query service
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/docsearch/internal/storage"
)

const namespace = "docsearch"

// Metrics groups the collectors registered on one registry
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       prometheus.Histogram
	indexRecords   prometheus.Gauge
	reloads        *prometheus.CounterVec
	embeddingRetry prometheus.Counter
}

// New registers the collectors, plus the Go and process collectors, on a
// fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search requests by HTTP status code.",
		}, []string{"code"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time spent answering search requests.",
			Buckets:   prometheus.DefBuckets,
		}),
		indexRecords: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_records",
			Help:      "Records in the currently loaded index.",
		}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_reloads_total",
			Help:      "Index and ranking config reloads after a file change.",
		}, []string{"kind"}),
		embeddingRetry: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_retries_total",
			Help:      "Embedding provider calls retried after a transient failure.",
		}),
	}
}

// ObserveSearch records one finished search request
func (m *Metrics) ObserveSearch(code int, elapsed time.Duration) {
	m.requests.WithLabelValues(strconv.Itoa(code)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// StoreReloaded matches the storage reload hook signature
func (m *Metrics) StoreReloaded(kind string, records int) {
	m.reloads.WithLabelValues(kind).Inc()
	if kind == storage.KindIndex {
		m.indexRecords.Set(float64(records))
	}
}

// EmbeddingRetried counts one retry
func (m *Metrics) EmbeddingRetried() {
	m.embeddingRetry.Inc()
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
