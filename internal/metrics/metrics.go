// Package metrics exposes Prometheus counters for catalog loading, search and
// export. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/pricemachine/internal/catalog"
)

const namespace = "pricemachine"

// Metrics holds the collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	// Load counters
	files       *prometheus.CounterVec // status: loaded, skipped
	rows        *prometheus.CounterVec // status: loaded, skipped
	diagnostics *prometheus.CounterVec // code: FILE00x, VAL00x
	records     prometheus.Gauge
	loadSeconds prometheus.Histogram

	// Query counters
	searches      prometheus.Counter
	searchResults prometheus.Histogram
	exports       *prometheus.CounterVec // status: ok, error
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "files_total",
			Help:      "Price files processed, by outcome",
		}, []string{"status"}),

		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "rows_total",
			Help:      "Data rows processed, by outcome",
		}, []string{"status"}),

		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "diagnostics_total",
			Help:      "Load diagnostics, by support code",
		}, []string{"code"}),

		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "records",
			Help:      "Records currently held in the catalog",
		}),

		loadSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "duration_seconds",
			Help:      "Directory load duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Search queries executed",
		}),

		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "results",
			Help:      "Records returned per search",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		}),

		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "reports_total",
			Help:      "HTML reports written, by outcome",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.files,
		m.rows,
		m.diagnostics,
		m.records,
		m.loadSeconds,
		m.searches,
		m.searchResults,
		m.exports,
	)

	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveLoad records the outcome of one catalog load.
func (m *Metrics) ObserveLoad(res *catalog.LoadResult, catalogSize int, elapsed time.Duration) {
	if m == nil || res == nil {
		return
	}

	m.files.WithLabelValues("loaded").Add(float64(len(res.Files)))
	m.files.WithLabelValues("skipped").Add(float64(len(res.Skipped)))
	m.rows.WithLabelValues("loaded").Add(float64(res.Records))
	m.rows.WithLabelValues("skipped").Add(float64(res.RowsSkipped))

	for _, d := range res.Diagnostics {
		m.diagnostics.WithLabelValues(catalog.MapDiagnostic(d).Code).Inc()
	}

	m.records.Set(float64(catalogSize))
	m.loadSeconds.Observe(elapsed.Seconds())
}

// ObserveSearch records one executed query and its result count.
func (m *Metrics) ObserveSearch(results int) {
	if m == nil {
		return
	}
	m.searches.Inc()
	m.searchResults.Observe(float64(results))
}

// ObserveExport records one export attempt.
func (m *Metrics) ObserveExport(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.exports.WithLabelValues(status).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
