// Package metrics exposes roster import and HTTP metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cssbattle/championship/internal/core"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the metrics of one process. It implements core.Metrics.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	imports           *prometheus.CounterVec
	importDuration    *prometheus.HistogramVec
	playersImported   prometheus.Counter
	templateDownloads prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var _ core.Metrics = (*Manager)(nil)

// NewManager creates a Manager on its own registry. Go runtime and process
// collectors are always registered.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "championship",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	auto := promauto.With(m.registry)

	m.imports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "import",
		Name:      "attempts_total",
		Help:      "Roster import attempts by outcome",
	}, []string{"outcome"})

	m.importDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "import",
		Name:      "duration_seconds",
		Help:      "Time from upload receipt to saved roster",
		Buckets:   m.buckets,
	}, []string{"outcome"})

	m.playersImported = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "import",
		Name:      "players_total",
		Help:      "Players saved by successful imports",
	})

	m.templateDownloads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "template",
		Name:      "downloads_total",
		Help:      "Roster template downloads",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method",
		Buckets:   m.buckets,
	}, []string{"route", "method"})

	return m
}

// ObserveImport records one import attempt.
func (m *Manager) ObserveImport(outcome core.ImportOutcome, rows int, d time.Duration) {
	m.imports.WithLabelValues(string(outcome)).Inc()
	m.importDuration.WithLabelValues(string(outcome)).Observe(d.Seconds())
	if outcome == core.OutcomeSuccess {
		m.playersImported.Add(float64(rows))
	}
}

// ObserveTemplateDownload records one template download.
func (m *Manager) ObserveTemplateDownload() {
	m.templateDownloads.Inc()
}

// TrackActiveImports exports fn as a gauge of running imports.
func (m *Manager) TrackActiveImports(fn func() int) {
	promauto.With(m.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "import",
		Name:      "active",
		Help:      "Imports currently holding a slot",
	}, func() float64 { return float64(fn()) })
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency labelled with the chi
// route pattern, so path parameters do not explode label cardinality.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
