// Package ndschema composes and validates schemas for multi-dimensional
// scientific array products. Schema fragments are YAML documents describing
// named fields with ranks, element datatypes, defaults, and bindings to
// named container extensions; fragments compose through ordered allOf lists
// with cross-references. The package resolves a composition into one
// effective schema, validates in-memory data objects against it, and
// derives the storage binding table consumed by external I/O layers.
package ndschema

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jacoelho/ndschema/errors"
	"github.com/jacoelho/ndschema/internal/binding"
	"github.com/jacoelho/ndschema/internal/fragment"
	"github.com/jacoelho/ndschema/internal/object"
	"github.com/jacoelho/ndschema/internal/registry"
)

// Datatype is the primitive element type tag of an array or scalar field.
type Datatype = fragment.Datatype

const (
	Float32   = fragment.Float32
	Float64   = fragment.Float64
	Uint8     = fragment.Uint8
	Uint16    = fragment.Uint16
	Uint32    = fragment.Uint32
	Int8      = fragment.Int8
	Int16     = fragment.Int16
	Int32     = fragment.Int32
	Int64     = fragment.Int64
	Complex64 = fragment.Complex64
	Bool      = fragment.Bool
)

// FieldSpec describes one field of an effective schema.
type FieldSpec = fragment.FieldSpec

// Object is an untyped data object: a mapping from field name to value.
type Object = object.DataObject

// Array is an array-valued field with a known rank and element type.
type Array = object.Array

// Bindings maps field names to their storage slots.
type Bindings = binding.Table

// Report holds the non-fatal findings of one validation pass.
type Report = errors.Report

// NewArray builds an array description with the given element type and shape.
func NewArray(dtype Datatype, shape ...int) *object.NDArray {
	return object.NewNDArray(dtype, shape...)
}

// Load composes the model at location from the given filesystem. Referenced
// fragments are loaded from the same filesystem, relative to its root.
func Load(fsys fs.FS, location string) (*Model, error) {
	return LoadWithOptions(fsys, location, NewLoadOptions())
}

// LoadWithOptions composes a model with explicit configuration.
func LoadWithOptions(fsys fs.FS, location string, opts LoadOptions) (*Model, error) {
	if fsys == nil {
		return nil, fmt.Errorf("load schema %s: nil fs", location)
	}

	collector := opts.collector()
	reg := registry.New(registry.Config{
		FS:      fsys,
		Logger:  opts.logger(),
		Metrics: collector,
	})
	es, err := reg.Effective(location)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", location, err)
	}
	return newModel(es, collector), nil
}

// LoadFile composes a model from a schema file path. Referenced fragments
// are loaded from the same directory.
func LoadFile(path string) (*Model, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	return Load(os.DirFS(dir), base)
}
