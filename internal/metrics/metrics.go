// Package metrics provides Prometheus instrumentation for the schema engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the engine's Prometheus metrics.
type Collector struct {
	// Composition metrics
	ComposeTotal    *prometheus.CounterVec
	ComposeCacheHit prometheus.Counter
	ComposeErrors   *prometheus.CounterVec

	// Validation metrics
	ValidationsTotal *prometheus.CounterVec
	IssuesTotal      *prometheus.CounterVec

	// Registry metrics
	Reloads       prometheus.Counter
	ReloadErrors  prometheus.Counter
	LastReload    prometheus.Gauge
	FragmentCount prometheus.Gauge
}

// New creates a collector registered on the default registry.
func New() *Collector {
	return newWith(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a collector on a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return newWith(promauto.With(reg))
}

func newWith(factory promauto.Factory) *Collector {
	return &Collector{
		ComposeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ndschema",
				Name:      "compose_total",
				Help:      "Total number of effective schema compositions",
			},
			[]string{"model"},
		),
		ComposeCacheHit: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "ndschema",
				Name:      "compose_cache_hits_total",
				Help:      "Total number of effective schema cache hits",
			},
		),
		ComposeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ndschema",
				Name:      "compose_errors_total",
				Help:      "Total number of failed compositions",
			},
			[]string{"model"},
		),
		ValidationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ndschema",
				Name:      "validations_total",
				Help:      "Total number of data object validations",
			},
			[]string{"model"},
		),
		IssuesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ndschema",
				Name:      "validation_issues_total",
				Help:      "Total validation issues by kind",
			},
			[]string{"model", "code"},
		),
		Reloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "ndschema",
				Name:      "registry_reloads_total",
				Help:      "Total number of successful registry reloads",
			},
		),
		ReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "ndschema",
				Name:      "registry_reload_errors_total",
				Help:      "Total number of registry reload errors",
			},
		),
		LastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "ndschema",
				Name:      "registry_last_reload_timestamp",
				Help:      "Unix timestamp of last successful registry reload",
			},
		),
		FragmentCount: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "ndschema",
				Name:      "registry_fragments",
				Help:      "Number of fragments currently registered",
			},
		),
	}
}
