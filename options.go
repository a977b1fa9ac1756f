package ndschema

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jacoelho/ndschema/internal/metrics"
)

type loggerOption struct {
	value zerolog.Logger
	set   bool
}

// LoadOptions configures model loading and registry behavior.
type LoadOptions struct {
	log       loggerOption
	registrer prometheus.Registerer
	enableMet bool
}

// NewLoadOptions returns a default, valid load options value.
func NewLoadOptions() LoadOptions {
	return LoadOptions{}
}

// WithLogger sets the structured logger used by registry operations.
// The default discards all log output.
func (o LoadOptions) WithLogger(logger zerolog.Logger) LoadOptions {
	o.log = loggerOption{value: logger, set: true}
	return o
}

// WithMetrics enables Prometheus instrumentation on the default registerer.
func (o LoadOptions) WithMetrics() LoadOptions {
	o.enableMet = true
	o.registrer = nil
	return o
}

// WithMetricsRegisterer enables Prometheus instrumentation on a custom
// registerer. Useful for testing to avoid global state.
func (o LoadOptions) WithMetricsRegisterer(reg prometheus.Registerer) LoadOptions {
	o.enableMet = true
	o.registrer = reg
	return o
}

func (o LoadOptions) logger() zerolog.Logger {
	if !o.log.set {
		return zerolog.Nop()
	}
	return o.log.value
}

func (o LoadOptions) collector() *metrics.Collector {
	if !o.enableMet {
		return nil
	}
	if o.registrer != nil {
		return metrics.NewWithRegistry(o.registrer)
	}
	return metrics.New()
}
