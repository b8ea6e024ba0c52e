package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/matzehuels/erdlayout/pkg/observability"
)

const namespace = "erdlayout"

// Metrics is a Prometheus implementation of the observability hooks plus
// per-route API counters.
type Metrics struct {
	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec

	loads           *prometheus.CounterVec
	validationFails prometheus.Counter
	layouts         prometheus.Counter
	layoutNodes     prometheus.Histogram
	layoutDuration  prometheus.Histogram
	stagedNodes     prometheus.Counter
	unplacedNodes   prometheus.Counter
	renders         *prometheus.CounterVec
	renderDuration  prometheus.Histogram

	cacheEvents *prometheus.CounterVec
	cacheBytes  prometheus.Counter

	remoteRequests *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
	remoteErrors   *prometheus.CounterVec
}

// NewMetrics creates the metric set and registers it, together with the Go
// runtime and process collectors, on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Time to serve an HTTP request.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagram_loads_total",
			Help:      "Diagrams decoded, by result.",
		}, []string{"result"}),
		validationFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Diagrams rejected by strict validation.",
		}),
		layouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_total",
			Help:      "Layout passes completed.",
		}),
		layoutNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_nodes",
			Help:      "Number of nodes per layout pass.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		layoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Time spent in the layout engine.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		stagedNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_staged_nodes_total",
			Help:      "Nodes placed in staging areas outside the skeleton.",
		}),
		unplacedNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_unplaced_nodes_total",
			Help:      "Nodes with an unknown role left at their input position.",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Previews rendered, by format and result.",
		}, []string{"format", "result"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time to render a preview.",
			Buckets:   prometheus.DefBuckets,
		}),

		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Response cache events, by kind and event.",
		}, []string{"kind", "event"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the response cache.",
		}),

		remoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Requests to remote services, by host and status code.",
		}, []string{"host", "code"}),
		remoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Latency of remote service requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
		remoteErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_errors_total",
			Help:      "Remote requests that failed before a response arrived.",
		}, []string{"host"}),
	}

	reg.MustRegister(
		m.apiRequests, m.apiDuration,
		m.loads, m.validationFails, m.layouts, m.layoutNodes, m.layoutDuration,
		m.stagedNodes, m.unplacedNodes, m.renders, m.renderDuration,
		m.cacheEvents, m.cacheBytes,
		m.remoteRequests, m.remoteDuration, m.remoteErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Install registers m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) observeRequest(route string, status int, d time.Duration) {
	m.apiRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.apiDuration.WithLabelValues(route).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Pipeline hooks

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	m.loads.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) OnValidate(_ context.Context, err error) {
	if err != nil {
		m.validationFails.Inc()
	}
}

func (m *Metrics) OnLayoutStart(context.Context, int, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, stats observability.LayoutStats, d time.Duration) {
	m.layouts.Inc()
	m.layoutNodes.Observe(float64(stats.Nodes))
	m.layoutDuration.Observe(d.Seconds())
	m.stagedNodes.Add(float64(stats.Staged))
	m.unplacedNodes.Add(float64(stats.Unplaced))
}

func (m *Metrics) OnRenderStart(context.Context, string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	m.renders.WithLabelValues(format, result(err)).Inc()
	m.renderDuration.Observe(d.Seconds())
}

// Cache hooks

func (m *Metrics) OnCacheHit(_ context.Context, kind string) {
	m.cacheEvents.WithLabelValues(kind, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, kind string) {
	m.cacheEvents.WithLabelValues(kind, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, kind string, size int) {
	m.cacheEvents.WithLabelValues(kind, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

// HTTP hooks

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.remoteRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.remoteDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.remoteErrors.WithLabelValues(host).Inc()
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
