// Package fragment holds the in-memory representation of a schema fragment
// and its YAML decoding. Fragments are immutable after decode.
package fragment

// FieldSpec describes one data field of a fragment field-set.
type FieldSpec struct {
	// Title is free-text documentation for the field.
	Title string
	// StorageSlot names the binary container extension the field is
	// persisted to. Empty means metadata-only, not persisted.
	StorageSlot string
	// Rank is the required dimensionality of an array value.
	// Nil means scalar/unconstrained.
	Rank *int
	// Datatype is the required element type. Unset means unconstrained.
	Datatype Datatype
	// Default is the value synthesized when the field is absent at
	// validation time. HasDefault distinguishes an explicit null default
	// from no default at all.
	Default    any
	HasDefault bool
}

// Member is one entry of a fragment's composition list: either a reference
// to another fragment by name, or an inline field-set.
type Member struct {
	// Ref names the referenced fragment. Empty for inline members.
	Ref string
	// Fields maps field name to its spec for inline members.
	Fields map[string]FieldSpec
	// Order preserves the document order of Fields.
	Order []string
	// Required lists field names that must be present at validation time.
	Required []string
}

// IsRef reports whether the member is a reference.
func (m Member) IsRef() bool {
	return m.Ref != ""
}

// Fragment is one named schema document: an ordered composition list of
// references and inline field-sets.
type Fragment struct {
	// ID is the fragment's registry name, normally its document location.
	ID string
	// Schema is the informational $schema identifier, preserved for
	// provenance and ignored by composition.
	Schema string
	// URI is the document's self-declared id, preserved for provenance
	// like Schema and ignored by composition.
	URI string
	// Members is the ordered composition list.
	Members []Member
}

// Resolved reports whether every composition member is inline.
func (f *Fragment) Resolved() bool {
	if f == nil {
		return false
	}
	for _, m := range f.Members {
		if m.IsRef() {
			return false
		}
	}
	return true
}

// References returns the names of all referenced fragments in order.
func (f *Fragment) References() []string {
	if f == nil {
		return nil
	}
	var refs []string
	for _, m := range f.Members {
		if m.IsRef() {
			refs = append(refs, m.Ref)
		}
	}
	return refs
}
