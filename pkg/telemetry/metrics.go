// Package telemetry wires the NOODLES server's ambient observability
// stack: a Prometheus metrics set and an OpenTelemetry TracerProvider,
// both built with a functional-options-over-a-default-config pattern.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the server's Prometheus metrics.
type MetricsConfig struct {
	Namespace   string
	ConstLabels prometheus.Labels
	Buckets     []float64
	Registry    prometheus.Registerer
}

// MetricsOption configures a MetricsConfig.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace (default: "noodles").
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithConstLabels sets constant labels applied to every metric.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets overrides the default duration-histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registerer metrics are registered
// against (default: prometheus.DefaultRegisterer).
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "noodles",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is the full set of counters/histograms/gauges the server core
// and its subsystems report to.
type Metrics struct {
	SessionsActive       prometheus.Gauge
	SessionsTotal         *prometheus.CounterVec // label "outcome"; the server records "accepted"
	MessagesBroadcastTotal prometheus.Counter
	MessagesSentTotal     prometheus.Counter
	FrameDecodeErrors     *prometheus.CounterVec // label "reason"
	MethodInvokeDuration  *prometheus.HistogramVec // label "method"
	MethodInvokeErrors    *prometheus.CounterVec   // label "code"
	ComponentsLive        *prometheus.GaugeVec     // label "kind"
}

// New builds a Metrics set, registering every collector against the
// configured registerer.
func New(opts ...MetricsOption) *Metrics {
	cfg := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "sessions_active",
			Help:        "Number of currently connected sessions.",
			ConstLabels: cfg.ConstLabels,
		}),
		SessionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "sessions_total",
			Help:        "Total sessions accepted, by terminal outcome.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"outcome"}),
		MessagesBroadcastTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "messages_broadcast_total",
			Help:        "Total broadcast frames fanned out to all sessions.",
			ConstLabels: cfg.ConstLabels,
		}),
		MessagesSentTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "messages_sent_total",
			Help:        "Total targeted (single-session) frames sent.",
			ConstLabels: cfg.ConstLabels,
		}),
		FrameDecodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "frame_decode_errors_total",
			Help:        "Total inbound frames that failed to decode, by reason.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"reason"}),
		MethodInvokeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "method_invoke_duration_seconds",
			Help:        "Method handler execution duration in seconds.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"method"}),
		MethodInvokeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "method_invoke_errors_total",
			Help:        "Total method invocations that returned an error, by code.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"code"}),
		ComponentsLive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "components_live",
			Help:        "Number of live components, by kind.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind"}),
	}
}
