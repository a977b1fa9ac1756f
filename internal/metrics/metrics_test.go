package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewWithRegistry(reg)
	if c == nil {
		t.Fatal("NewWithRegistry() = nil")
	}

	c.ComposeTotal.WithLabelValues("cube.schema.yaml").Inc()
	c.ComposeCacheHit.Inc()
	c.ComposeCacheHit.Inc()
	c.IssuesTotal.WithLabelValues("cube.schema.yaml", "rank-mismatch").Inc()
	c.FragmentCount.Set(7)

	if got := testutil.ToFloat64(c.ComposeTotal.WithLabelValues("cube.schema.yaml")); got != 1 {
		t.Errorf("compose_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.ComposeCacheHit); got != 2 {
		t.Errorf("compose_cache_hits_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.FragmentCount); got != 7 {
		t.Errorf("registry_fragments = %v, want 7", got)
	}
}

func TestNewWithRegistryIsolated(t *testing.T) {
	// Two collectors on separate registries must not collide.
	a := NewWithRegistry(prometheus.NewRegistry())
	b := NewWithRegistry(prometheus.NewRegistry())

	a.Reloads.Inc()
	if got := testutil.ToFloat64(b.Reloads); got != 0 {
		t.Errorf("second collector reloads = %v, want 0", got)
	}
}
