package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/competence-ledger/internal/ledger"
)

// Metrics holds the process collectors on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	apiRequests  *prometheus.CounterVec
	apiLatency   *prometheus.HistogramVec
	apiInflight  prometheus.Gauge
	levelChanges *prometheus.CounterVec
	nodeLevels   *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		levelChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_level_changes_total",
			Help: "Applied level steps by direction and resulting level.",
		}, []string{"direction", "level"}),
		nodeLevels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ledger_nodes_at_level",
			Help: "Competency nodes currently at each level.",
		}, []string{"level"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight, m.levelChanges, m.nodeLevels,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// NotifyLevel counts applied steps and moves the per-level node gauge.
func (m *Metrics) NotifyLevel(_ context.Context, ch ledger.Change) {
	if m == nil {
		return
	}
	direction := "increase"
	if ch.Level < ch.Previous {
		direction = "decrease"
	}
	m.levelChanges.WithLabelValues(direction, strconv.Itoa(ch.Level)).Inc()
	m.nodeLevels.WithLabelValues(strconv.Itoa(ch.Previous)).Dec()
	m.nodeLevels.WithLabelValues(strconv.Itoa(ch.Level)).Inc()
}

// SetLevelCounts replaces the per-level gauge, e.g. after a reload.
func (m *Metrics) SetLevelCounts(counts map[int]int) {
	if m == nil {
		return
	}
	m.nodeLevels.Reset()
	for level, n := range counts {
		m.nodeLevels.WithLabelValues(strconv.Itoa(level)).Set(float64(n))
	}
}
