// Package prom exports the observability hooks as Prometheus metrics.
//
// A single [Metrics] value implements every hook interface in
// [observability]; register it once at startup:
//
//	m := prom.New(prometheus.DefaultRegisterer)
//	m.Install()
//
// All operations are safe for concurrent use.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/mutuals/pkg/observability"
)

const namespace = "mutuals"

// Metrics holds the collectors behind the hook implementations.
type Metrics struct {
	// StageDuration measures pipeline stages. Labels: stage, status.
	StageDuration *prometheus.HistogramVec
	// ModelSize tracks the last built model. Labels: element (nodes, edges).
	ModelSize *prometheus.GaugeVec
	// Renders counts rendered artifacts. Labels: format, status.
	Renders *prometheus.CounterVec

	// Selections counts accepted selection events. Labels: kind.
	Selections *prometheus.CounterVec
	// SelectionRejected counts rejected taps.
	SelectionRejected prometheus.Counter
	// Highlighted observes the highlighted node count per selection.
	Highlighted prometheus.Histogram

	// CacheOps counts cache lookups and writes. Labels: type, result.
	CacheOps *prometheus.CounterVec
	// CacheBytes counts bytes written to the cache. Labels: type.
	CacheBytes *prometheus.CounterVec

	// Requests counts HTTP responses. Labels: method, route, code.
	Requests *prometheus.CounterVec
	// RequestDuration measures HTTP latency. Labels: method, route.
	RequestDuration *prometheus.HistogramVec
	// Streams is the number of open view streams.
	Streams prometheus.Gauge
}

var (
	_ observability.PipelineHooks  = (*Metrics)(nil)
	_ observability.SelectionHooks = (*Metrics)(nil)
	_ observability.CacheHooks     = (*Metrics)(nil)
	_ observability.HTTPHooks      = (*Metrics)(nil)
)

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage", "status"}),
		ModelSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "model_elements",
			Help:      "Elements in the most recently built model.",
		}, []string{"element"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "renders_total",
			Help:      "Rendered artifacts by format.",
		}, []string{"format", "status"}),
		Selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "selection",
			Name:      "events_total",
			Help:      "Accepted selection events by selected kind.",
		}, []string{"kind"}),
		SelectionRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "selection",
			Name:      "rejected_total",
			Help:      "Taps that named no node.",
		}),
		Highlighted: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "selection",
			Name:      "highlighted_nodes",
			Help:      "Nodes highlighted per selection.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		CacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache lookups and writes.",
		}, []string{"type", "result"}),
		CacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"type"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP responses by route and status code.",
		}, []string{"method", "route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Streams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "open_streams",
			Help:      "Open view streams.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.collectors()...)
	}
	return m
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.StageDuration, m.ModelSize, m.Renders,
		m.Selections, m.SelectionRejected, m.Highlighted,
		m.CacheOps, m.CacheBytes,
		m.Requests, m.RequestDuration, m.Streams,
	}
}

// Install sets m as the global hooks for every observability category.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetSelectionHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// =============================================================================
// Pipeline
// =============================================================================

func (m *Metrics) OnLoadStart(ctx context.Context, source string) {}

func (m *Metrics) OnLoadComplete(ctx context.Context, source string, groups int, dur time.Duration, err error) {
	m.StageDuration.WithLabelValues("load", status(err)).Observe(dur.Seconds())
}

func (m *Metrics) OnBuildStart(ctx context.Context, persons int) {}

func (m *Metrics) OnBuildComplete(ctx context.Context, nodes, edges int, dur time.Duration, err error) {
	m.StageDuration.WithLabelValues("build", status(err)).Observe(dur.Seconds())
	if err == nil {
		m.ModelSize.WithLabelValues("nodes").Set(float64(nodes))
		m.ModelSize.WithLabelValues("edges").Set(float64(edges))
	}
}

func (m *Metrics) OnRenderStart(ctx context.Context, format string) {}

func (m *Metrics) OnRenderComplete(ctx context.Context, format string, dur time.Duration, err error) {
	m.StageDuration.WithLabelValues("render", status(err)).Observe(dur.Seconds())
	m.Renders.WithLabelValues(format, status(err)).Inc()
}

// =============================================================================
// Selection
// =============================================================================

func (m *Metrics) OnSelect(ctx context.Context, kind string, highlighted, dimmed int, dur time.Duration) {
	m.Selections.WithLabelValues(kind).Inc()
	m.Highlighted.Observe(float64(highlighted))
}

func (m *Metrics) OnDeselect(ctx context.Context) {
	m.Selections.WithLabelValues("none").Inc()
}

func (m *Metrics) OnRejected(ctx context.Context, id string, err error) {
	m.SelectionRejected.Inc()
}

// =============================================================================
// Cache
// =============================================================================

func (m *Metrics) OnCacheHit(ctx context.Context, keyType string) {
	m.CacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(ctx context.Context, keyType string) {
	m.CacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(ctx context.Context, keyType string, size int) {
	m.CacheOps.WithLabelValues(keyType, "set").Inc()
	m.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// =============================================================================
// HTTP
// =============================================================================

func (m *Metrics) OnResponse(ctx context.Context, method, route string, code int, dur time.Duration) {
	m.Requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) OnStream(ctx context.Context, delta int) {
	m.Streams.Add(float64(delta))
}
