// Package registry provides the shared, process-scoped fragment registry:
// explicit bulk-load initialization, concurrency-safe lookup, an effective
// schema cache with wholesale invalidation, and optional hot reload of a
// backing schema directory.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jacoelho/ndschema/internal/composer"
	"github.com/jacoelho/ndschema/internal/fragment"
	"github.com/jacoelho/ndschema/internal/metrics"
	"github.com/jacoelho/ndschema/internal/resolver"
)

// Config holds registry configuration.
type Config struct {
	// FS is the optional backing filesystem, rooted at the schema
	// directory. With a backing FS, unknown fragment names are loaded
	// lazily and Reload re-reads the whole directory.
	FS fs.FS

	Logger zerolog.Logger

	// Metrics is optional; nil disables instrumentation.
	Metrics *metrics.Collector
}

// Registry maps fragment names to loaded fragments and caches composed
// effective schemas. It is safe for concurrent use; loading should happen
// during an explicit initialization phase, not interleaved with validation.
//
// The fragment map is treated as copy-on-write: every mutation installs a
// new map, so a composition can resolve against a stable snapshot without
// holding the lock. generation counts mutations; a composition started
// against an older generation is never written into the cache.
type Registry struct {
	mu         sync.RWMutex
	fragments  map[string]*fragment.Fragment
	cache      map[string]*composer.EffectiveSchema
	generation uint64

	fsys    fs.FS
	logger  zerolog.Logger
	metrics *metrics.Collector

	watch *watcher
}

// New creates an empty registry.
func New(cfg Config) *Registry {
	return &Registry{
		fragments: make(map[string]*fragment.Fragment),
		cache:     make(map[string]*composer.EffectiveSchema),
		fsys:      cfg.FS,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

// Add registers an already-decoded fragment under its ID and invalidates
// the effective schema cache.
func (r *Registry) Add(frag *fragment.Fragment) error {
	if frag == nil {
		return fmt.Errorf("registry add: nil fragment")
	}
	if frag.ID == "" {
		return fmt.Errorf("registry add: fragment without id")
	}

	r.mu.Lock()
	next := make(map[string]*fragment.Fragment, len(r.fragments)+1)
	for name, f := range r.fragments {
		next[name] = f
	}
	next[frag.ID] = frag
	r.fragments = next
	r.cache = make(map[string]*composer.EffectiveSchema)
	r.generation++
	count := len(r.fragments)
	r.mu.Unlock()

	r.setFragmentCount(count)
	return nil
}

// LoadDir bulk-loads every schema document from the backing filesystem,
// replacing the registry contents and cache in one step.
func (r *Registry) LoadDir() error {
	if r.fsys == nil {
		return fmt.Errorf("registry load: no backing filesystem")
	}

	fragments, err := loadAll(r.fsys)
	if err != nil {
		return fmt.Errorf("registry load: %w", err)
	}

	r.mu.Lock()
	r.fragments = fragments
	r.cache = make(map[string]*composer.EffectiveSchema)
	r.generation++
	count := len(r.fragments)
	r.mu.Unlock()

	r.setFragmentCount(count)
	r.logger.Info().Int("fragments", count).Msg("schema registry loaded")
	return nil
}

// Lookup returns the fragment registered under name, loading it lazily from
// the backing filesystem when absent. A nil fragment with a nil error means
// the name is unknown.
func (r *Registry) Lookup(name string) (*fragment.Fragment, error) {
	r.mu.RLock()
	frag, ok := r.fragments[name]
	r.mu.RUnlock()
	if ok {
		return frag, nil
	}

	loaded, err := r.readFragment(name)
	if err != nil || loaded == nil {
		return nil, err
	}

	r.mu.Lock()
	// Another goroutine may have loaded it meanwhile; keep the first.
	if existing, ok := r.fragments[name]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	next := make(map[string]*fragment.Fragment, len(r.fragments)+1)
	for n, f := range r.fragments {
		next[n] = f
	}
	next[name] = loaded
	r.fragments = next
	count := len(r.fragments)
	r.mu.Unlock()

	r.setFragmentCount(count)
	return loaded, nil
}

// readFragment loads one fragment from the backing filesystem without
// touching registry state. A nil fragment with a nil error means the name
// has no backing document.
func (r *Registry) readFragment(name string) (*fragment.Fragment, error) {
	if r.fsys == nil {
		return nil, nil
	}
	data, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("registry read %s: %w", name, err)
	}
	return fragment.Decode(data, name)
}

// Effective resolves and composes the effective schema for one top-level
// model name, caching the result until the registry changes.
//
// Resolution runs against a snapshot of the fragment map, so a concurrent
// Add or Reload cannot feed a composition a mix of old and new fragment
// versions. If the registry mutated while a composition was in flight, its
// result is returned to the caller but not cached; the next call composes
// from the current fragments.
func (r *Registry) Effective(name string) (*composer.EffectiveSchema, error) {
	r.mu.RLock()
	es, ok := r.cache[name]
	gen := r.generation
	snapshot := r.fragments
	r.mu.RUnlock()
	if ok {
		if r.metrics != nil {
			r.metrics.ComposeCacheHit.Inc()
		}
		return es, nil
	}

	// Fragments loaded lazily during this composition are kept aside and
	// only registered once the composition proves still current.
	loaded := make(map[string]*fragment.Fragment)
	lookup := func(n string) (*fragment.Fragment, error) {
		if frag, ok := snapshot[n]; ok {
			return frag, nil
		}
		if frag, ok := loaded[n]; ok {
			return frag, nil
		}
		frag, err := r.readFragment(n)
		if err != nil || frag == nil {
			return nil, err
		}
		loaded[n] = frag
		return frag, nil
	}

	frag, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if frag == nil {
		return nil, fmt.Errorf("effective schema %s: unknown fragment", name)
	}

	resolved, err := resolver.Resolve(frag, lookup)
	if err != nil {
		r.countComposeError(name)
		return nil, err
	}
	es, err = composer.Compose(resolved)
	if err != nil {
		r.countComposeError(name)
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.ComposeTotal.WithLabelValues(name).Inc()
	}

	r.mu.Lock()
	if r.generation == gen {
		if len(loaded) > 0 {
			next := make(map[string]*fragment.Fragment, len(r.fragments)+len(loaded))
			for n, f := range r.fragments {
				next[n] = f
			}
			for n, f := range loaded {
				if _, ok := next[n]; !ok {
					next[n] = f
				}
			}
			r.fragments = next
		}
		r.cache[name] = es
	}
	count := len(r.fragments)
	r.mu.Unlock()

	r.setFragmentCount(count)
	return es, nil
}

// Invalidate clears the effective schema cache. In-flight compositions
// will not repopulate it.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[string]*composer.EffectiveSchema)
	r.generation++
	r.mu.Unlock()
}

// Reload re-reads the backing filesystem and swaps the fragment map and
// cache in one critical section. On error the old contents are kept, so an
// effective schema is never a mix of old and new fragment versions.
func (r *Registry) Reload() error {
	if r.fsys == nil {
		return fmt.Errorf("registry reload: no backing filesystem")
	}
	r.logger.Info().Msg("reloading schema registry")

	fragments, err := loadAll(r.fsys)
	if err != nil {
		if r.metrics != nil {
			r.metrics.ReloadErrors.Inc()
		}
		r.logger.Error().Err(err).Msg("registry reload failed, keeping old fragments")
		return fmt.Errorf("registry reload: %w", err)
	}

	r.mu.Lock()
	r.fragments = fragments
	r.cache = make(map[string]*composer.EffectiveSchema)
	r.generation++
	count := len(r.fragments)
	r.mu.Unlock()

	r.setFragmentCount(count)
	if r.metrics != nil {
		r.metrics.Reloads.Inc()
		r.metrics.LastReload.Set(float64(time.Now().Unix()))
	}
	r.logger.Info().Int("fragments", count).Msg("schema registry reloaded")
	return nil
}

// Names returns the registered fragment names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.fragments))
	for name := range r.fragments {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of registered fragments.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fragments)
}

func (r *Registry) setFragmentCount(count int) {
	if r.metrics != nil {
		r.metrics.FragmentCount.Set(float64(count))
	}
}

func (r *Registry) countComposeError(name string) {
	if r.metrics != nil {
		r.metrics.ComposeErrors.WithLabelValues(name).Inc()
	}
}

func loadAll(fsys fs.FS) (map[string]*fragment.Fragment, error) {
	fragments := make(map[string]*fragment.Fragment)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !isSchemaFile(p) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		frag, err := fragment.Decode(data, p)
		if err != nil {
			return err
		}
		fragments[p] = frag
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fragments, nil
}

func isSchemaFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err)
}
