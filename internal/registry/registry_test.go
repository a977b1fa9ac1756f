package registry

import (
	"io/fs"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"

	"github.com/jacoelho/ndschema/internal/fragment"
)

const coreDoc = `properties:
  telescope:
    title: Telescope used to acquire the data
`

const cubeDoc = `allOf:
- $ref: core.schema.yaml
- properties:
    data:
      title: The science data
      fits_hdu: SCI
      ndim: 3
      datatype: float32
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"core.schema.yaml": &fstest.MapFile{Data: []byte(coreDoc)},
		"cube.schema.yaml": &fstest.MapFile{Data: []byte(cubeDoc)},
		"README.md":        &fstest.MapFile{Data: []byte("not a schema")},
	}
}

func newTestRegistry(fsys fstest.MapFS) *Registry {
	return New(Config{FS: fsys, Logger: zerolog.Nop()})
}

func TestLoadDir(t *testing.T) {
	r := newTestRegistry(testFS())
	if err := r.LoadDir(); err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (non-schema files skipped)", r.Len())
	}
	names := r.Names()
	if len(names) != 2 || names[0] != "core.schema.yaml" || names[1] != "cube.schema.yaml" {
		t.Errorf("Names() = %v", names)
	}
}

func TestLoadDirMalformed(t *testing.T) {
	fsys := testFS()
	fsys["bad.schema.yaml"] = &fstest.MapFile{Data: []byte("allOf:\n- title: nope\n")}

	r := newTestRegistry(fsys)
	if err := r.LoadDir(); err == nil {
		t.Fatal("LoadDir() error = nil, want malformed fragment error")
	}
}

func TestLookupLazyLoad(t *testing.T) {
	r := newTestRegistry(testFS())

	frag, err := r.Lookup("core.schema.yaml")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if frag == nil || frag.ID != "core.schema.yaml" {
		t.Fatalf("Lookup() = %+v, want lazily loaded fragment", frag)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after lazy load", r.Len())
	}
}

func TestLookupUnknown(t *testing.T) {
	r := newTestRegistry(testFS())
	frag, err := r.Lookup("missing.schema.yaml")
	if err != nil {
		t.Fatalf("Lookup() error = %v, want nil for unknown name", err)
	}
	if frag != nil {
		t.Errorf("Lookup() = %+v, want nil", frag)
	}
}

func TestEffectiveComposesAndCaches(t *testing.T) {
	r := newTestRegistry(testFS())

	first, err := r.Effective("cube.schema.yaml")
	if err != nil {
		t.Fatalf("Effective() error = %v", err)
	}
	if _, ok := first.Field("telescope"); !ok {
		t.Error("telescope missing: core fragment not composed in")
	}
	if _, ok := first.Field("data"); !ok {
		t.Error("data missing from effective schema")
	}

	second, err := r.Effective("cube.schema.yaml")
	if err != nil {
		t.Fatalf("Effective() second call error = %v", err)
	}
	if first != second {
		t.Error("Effective() recomposed, want cached schema returned")
	}
}

func TestEffectiveUnknownModel(t *testing.T) {
	r := newTestRegistry(testFS())
	_, err := r.Effective("missing.schema.yaml")
	if err == nil || !strings.Contains(err.Error(), "unknown fragment") {
		t.Fatalf("Effective() error = %v, want unknown fragment", err)
	}
}

func TestAddInvalidatesCache(t *testing.T) {
	r := newTestRegistry(testFS())
	first, err := r.Effective("cube.schema.yaml")
	if err != nil {
		t.Fatalf("Effective() error = %v", err)
	}

	frag, err := fragment.Decode([]byte(coreDoc), "extra.schema.yaml")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := r.Add(frag); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	second, err := r.Effective("cube.schema.yaml")
	if err != nil {
		t.Fatalf("Effective() error = %v", err)
	}
	if first == second {
		t.Error("Effective() returned stale cache after Add()")
	}
}

func TestReloadSwapsAtomically(t *testing.T) {
	fsys := testFS()
	r := newTestRegistry(fsys)
	if err := r.LoadDir(); err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}

	stale, err := r.Effective("cube.schema.yaml")
	if err != nil {
		t.Fatalf("Effective() error = %v", err)
	}

	fsys["core.schema.yaml"] = &fstest.MapFile{Data: []byte(`properties:
  telescope:
    title: Telescope used to acquire the data
  observatory:
    title: Observatory identifier
`)}
	if err := r.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	fresh, err := r.Effective("cube.schema.yaml")
	if err != nil {
		t.Fatalf("Effective() after reload error = %v", err)
	}
	if fresh == stale {
		t.Fatal("Effective() returned stale cache after Reload()")
	}
	if _, ok := fresh.Field("observatory"); !ok {
		t.Error("observatory missing: reload did not pick up new fragment version")
	}
}

func TestReloadKeepsOldOnError(t *testing.T) {
	fsys := testFS()
	r := newTestRegistry(fsys)
	if err := r.LoadDir(); err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}

	fsys["core.schema.yaml"] = &fstest.MapFile{Data: []byte("allOf:\n- title: nope\n")}
	if err := r.Reload(); err == nil {
		t.Fatal("Reload() error = nil, want malformed fragment error")
	}

	// Old contents survive a failed reload.
	if _, err := r.Effective("cube.schema.yaml"); err != nil {
		t.Errorf("Effective() after failed reload error = %v, want old fragments kept", err)
	}
}

// gatedFS blocks the first open of one file until released, so a test can
// mutate the registry while a composition is reading fragments.
type gatedFS struct {
	inner   fstest.MapFS
	gate    string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedFS) Open(name string) (fs.File, error) {
	if name == g.gate {
		g.once.Do(func() { close(g.entered) })
		<-g.release
	}
	return g.inner.Open(name)
}

func TestEffectiveNotCachedWhenRegistryChangesMidCompose(t *testing.T) {
	oldA := "properties:\n  f:\n    title: old\n"
	newA := "properties:\n  f:\n    title: new\n"
	newB := "properties:\n  g:\n    title: new\n"
	topDoc := "allOf:\n- $ref: a.schema.yaml\n- $ref: b.schema.yaml\n"

	fsys := &gatedFS{
		inner: fstest.MapFS{
			"top.schema.yaml": &fstest.MapFile{Data: []byte(topDoc)},
			"a.schema.yaml":   &fstest.MapFile{Data: []byte(newA)},
			"b.schema.yaml":   &fstest.MapFile{Data: []byte(newB)},
		},
		gate:    "b.schema.yaml",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	r := New(Config{FS: fsys, Logger: zerolog.Nop()})

	// Register the old versions of top and a; b loads lazily through the gate.
	for id, doc := range map[string]string{"top.schema.yaml": topDoc, "a.schema.yaml": oldA} {
		frag, err := fragment.Decode([]byte(doc), id)
		if err != nil {
			t.Fatalf("Decode(%s) error = %v", id, err)
		}
		if err := r.Add(frag); err != nil {
			t.Fatalf("Add(%s) error = %v", id, err)
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := r.Effective("top.schema.yaml")
		done <- err
	}()

	// While the composition is blocked reading b, replace a.
	<-fsys.entered
	frag, err := fragment.Decode([]byte(newA), "a.schema.yaml")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := r.Add(frag); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	close(fsys.release)
	if err := <-done; err != nil {
		t.Fatalf("in-flight Effective() error = %v", err)
	}

	// A composition started before the Add must not have populated the
	// cache; this call composes from the current fragments.
	es, err := r.Effective("top.schema.yaml")
	if err != nil {
		t.Fatalf("Effective() error = %v", err)
	}
	if spec, _ := es.Field("f"); spec.Title != "new" {
		t.Errorf("f.Title = %q, want %q from the replaced fragment", spec.Title, "new")
	}
	if spec, _ := es.Field("g"); spec.Title != "new" {
		t.Errorf("g.Title = %q, want %q", spec.Title, "new")
	}
}

func TestInvalidateDropsCache(t *testing.T) {
	r := newTestRegistry(testFS())
	first, err := r.Effective("cube.schema.yaml")
	if err != nil {
		t.Fatalf("Effective() error = %v", err)
	}

	r.Invalidate()

	second, err := r.Effective("cube.schema.yaml")
	if err != nil {
		t.Fatalf("Effective() error = %v", err)
	}
	if first == second {
		t.Error("Effective() served the invalidated cache entry")
	}
}

func TestReloadWithoutFS(t *testing.T) {
	r := New(Config{Logger: zerolog.Nop()})
	if err := r.Reload(); err == nil {
		t.Fatal("Reload() error = nil, want no backing filesystem error")
	}
}
