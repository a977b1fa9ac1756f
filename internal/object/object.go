// Package object defines the data-object contract the validator checks:
// an untyped mapping from field name to scalar or array values.
package object

import (
	"reflect"

	"github.com/jacoelho/ndschema/internal/fragment"
)

// DataObject is an untyped mapping from field name to a value. The engine
// never mutates a caller's object; validation returns a new one.
type DataObject map[string]any

// Clone returns a shallow copy of the object.
func (o DataObject) Clone() DataObject {
	if o == nil {
		return nil
	}
	out := make(DataObject, len(o))
	for name, value := range o {
		out[name] = value
	}
	return out
}

// Array is an array-valued field with a known rank and element type.
// Domain data providers implement it for their own array types.
type Array interface {
	Rank() int
	Datatype() fragment.Datatype
}

// NDArray is a minimal Array implementation carrying element type and shape.
// It describes an array for validation purposes; it holds no element data.
type NDArray struct {
	dtype fragment.Datatype
	shape []int
}

// NewNDArray builds an array description with the given element type and shape.
func NewNDArray(dtype fragment.Datatype, shape ...int) *NDArray {
	s := make([]int, len(shape))
	copy(s, shape)
	return &NDArray{dtype: dtype, shape: s}
}

// Rank returns the number of dimensions.
func (a *NDArray) Rank() int {
	return len(a.shape)
}

// Datatype returns the element type.
func (a *NDArray) Datatype() fragment.Datatype {
	return a.dtype
}

// Shape returns a copy of the array shape.
func (a *NDArray) Shape() []int {
	out := make([]int, len(a.shape))
	copy(out, a.shape)
	return out
}

// RankOf returns the rank of a value: an Array's declared rank, the slice
// nesting depth for plain Go slices (including dynamically-typed []any
// nesting as produced by YAML decoding), and 0 for scalars.
func RankOf(v any) int {
	if arr, ok := v.(Array); ok {
		return arr.Rank()
	}
	rank := 0
	val := reflect.ValueOf(v)
	for val.IsValid() && (val.Kind() == reflect.Slice || val.Kind() == reflect.Array) {
		rank++
		if val.Len() == 0 {
			// No element to descend into; count the remaining static
			// nesting of the element type.
			t := val.Type().Elem()
			for t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
				rank++
				t = t.Elem()
			}
			return rank
		}
		val = elem(val.Index(0))
	}
	return rank
}

// DatatypeOf returns the element type of a value when it can be determined:
// an Array's declared type, the innermost element type of a plain Go slice,
// or the mapped primitive type of a Go scalar. The second result is false
// when the value's type has no vocabulary mapping; such values skip the
// datatype check rather than reporting a false mismatch.
func DatatypeOf(v any) (fragment.Datatype, bool) {
	if arr, ok := v.(Array); ok {
		dt := arr.Datatype()
		return dt, dt.IsSet()
	}
	val := reflect.ValueOf(v)
	for val.IsValid() && (val.Kind() == reflect.Slice || val.Kind() == reflect.Array) {
		if val.Len() == 0 {
			return kindDatatype(innermostKind(val.Type().Elem()))
		}
		val = elem(val.Index(0))
	}
	if !val.IsValid() {
		return fragment.DatatypeUnset, false
	}
	return kindDatatype(val.Kind())
}

func elem(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		return v.Elem()
	}
	return v
}

func innermostKind(t reflect.Type) reflect.Kind {
	for t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	return t.Kind()
}

func kindDatatype(k reflect.Kind) (fragment.Datatype, bool) {
	switch k {
	case reflect.Float32:
		return fragment.Float32, true
	case reflect.Float64:
		return fragment.Float64, true
	case reflect.Uint8:
		return fragment.Uint8, true
	case reflect.Uint16:
		return fragment.Uint16, true
	case reflect.Uint32:
		return fragment.Uint32, true
	case reflect.Int8:
		return fragment.Int8, true
	case reflect.Int16:
		return fragment.Int16, true
	case reflect.Int32:
		return fragment.Int32, true
	case reflect.Int, reflect.Int64:
		return fragment.Int64, true
	case reflect.Complex64:
		return fragment.Complex64, true
	case reflect.Bool:
		return fragment.Bool, true
	default:
		return fragment.DatatypeUnset, false
	}
}
