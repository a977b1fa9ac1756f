package ndschema

import (
	"fmt"
	"io/fs"

	"github.com/jacoelho/ndschema/internal/metrics"
	"github.com/jacoelho/ndschema/internal/registry"
)

// Registry owns a shared set of schema fragments and composes models from
// them. It is explicit process-scoped state: populate it once during an
// initialization phase with Init, then compose and validate concurrently.
// Refresh atomically swaps the fragment set and drops every cached
// effective schema, so a composed model is never a mix of old and new
// fragment versions.
type Registry struct {
	inner     *registry.Registry
	collector *metrics.Collector
}

// NewRegistry creates a registry backed by a filesystem rooted at the
// schema directory.
func NewRegistry(fsys fs.FS, opts ...LoadOptions) (*Registry, error) {
	if fsys == nil {
		return nil, fmt.Errorf("registry: nil fs")
	}
	loadOpts := NewLoadOptions()
	if len(opts) > 0 {
		loadOpts = opts[0]
	}

	collector := loadOpts.collector()
	return &Registry{
		inner: registry.New(registry.Config{
			FS:      fsys,
			Logger:  loadOpts.logger(),
			Metrics: collector,
		}),
		collector: collector,
	}, nil
}

// Init bulk-loads every schema document from the backing filesystem.
func (r *Registry) Init() error {
	if r == nil || r.inner == nil {
		return fmt.Errorf("registry: not initialized")
	}
	return r.inner.LoadDir()
}

// Model composes the effective schema for one top-level fragment name.
// Results are cached until the registry is refreshed.
func (r *Registry) Model(name string) (*Model, error) {
	if r == nil || r.inner == nil {
		return nil, fmt.Errorf("registry: not initialized")
	}
	es, err := r.inner.Effective(name)
	if err != nil {
		return nil, fmt.Errorf("compose model %s: %w", name, err)
	}
	return newModel(es, r.collector), nil
}

// Refresh re-reads the backing filesystem, replacing all fragments and
// invalidating cached effective schemas in one step. On error the previous
// contents are kept.
func (r *Registry) Refresh() error {
	if r == nil || r.inner == nil {
		return fmt.Errorf("registry: not initialized")
	}
	return r.inner.Reload()
}

// Watch starts watching the schema directory (as a real filesystem path)
// and refreshes the registry when documents change.
func (r *Registry) Watch(dir string) error {
	if r == nil || r.inner == nil {
		return fmt.Errorf("registry: not initialized")
	}
	return r.inner.Watch(dir)
}

// Stop stops watching for schema changes.
func (r *Registry) Stop() {
	if r == nil || r.inner == nil {
		return
	}
	r.inner.Stop()
}

// Fragments returns the registered fragment names, sorted.
func (r *Registry) Fragments() []string {
	if r == nil || r.inner == nil {
		return nil
	}
	return r.inner.Names()
}
