package fragment

import "fmt"

// Datatype is the primitive element type tag of an array or scalar field.
type Datatype string

const (
	// DatatypeUnset marks a field with no declared element type.
	DatatypeUnset Datatype = ""

	Float32   Datatype = "float32"
	Float64   Datatype = "float64"
	Uint8     Datatype = "uint8"
	Uint16    Datatype = "uint16"
	Uint32    Datatype = "uint32"
	Int8      Datatype = "int8"
	Int16     Datatype = "int16"
	Int32     Datatype = "int32"
	Int64     Datatype = "int64"
	Complex64 Datatype = "complex64"
	Bool      Datatype = "bool"
)

var datatypes = map[Datatype]bool{
	Float32:   true,
	Float64:   true,
	Uint8:     true,
	Uint16:    true,
	Uint32:    true,
	Int8:      true,
	Int16:     true,
	Int32:     true,
	Int64:     true,
	Complex64: true,
	Bool:      true,
}

// ParseDatatype validates a datatype token from a schema document.
func ParseDatatype(s string) (Datatype, error) {
	dt := Datatype(s)
	if !datatypes[dt] {
		return DatatypeUnset, fmt.Errorf("unknown datatype %q", s)
	}
	return dt, nil
}

// String returns the datatype token.
func (d Datatype) String() string {
	return string(d)
}

// IsSet reports whether the field declares an element type.
func (d Datatype) IsSet() bool {
	return d != DatatypeUnset
}
