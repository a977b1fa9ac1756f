// Package errors defines the engine error taxonomy: fatal errors raised
// while loading, resolving or composing schema fragments, and non-fatal
// validation issues collected into reports.
package errors

import (
	"fmt"
	"strings"
)

// MalformedSchemaError reports a structurally invalid schema fragment.
// It aborts loading of that fragment.
type MalformedSchemaError struct {
	Fragment string
	Field    string
	Reason   string
}

// Error returns the error string with fragment and field context.
func (e *MalformedSchemaError) Error() string {
	if e == nil {
		return "malformed schema <nil>"
	}
	if e.Field != "" {
		return fmt.Sprintf("malformed schema %s: field %q: %s", e.Fragment, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed schema %s: %s", e.Fragment, e.Reason)
}

// UnresolvedReferenceError reports a composition reference to a fragment
// name absent from the registry.
type UnresolvedReferenceError struct {
	Fragment string
	Ref      string
}

// Error returns the error string naming the referencing fragment and target.
func (e *UnresolvedReferenceError) Error() string {
	if e == nil {
		return "unresolved reference <nil>"
	}
	return fmt.Sprintf("fragment %s references unknown fragment %q", e.Fragment, e.Ref)
}

// CyclicReferenceError reports a cycle in the fragment reference graph.
// Chain holds the active resolution chain; the last entry closes the cycle.
type CyclicReferenceError struct {
	Chain []string
}

// Error returns the error string naming the cycle.
func (e *CyclicReferenceError) Error() string {
	if e == nil {
		return "cyclic reference <nil>"
	}
	return fmt.Sprintf("cyclic fragment reference: %s", strings.Join(e.Chain, " -> "))
}

// ConflictingDatatypeError reports two composition members declaring
// incompatible rank or datatype for the same field. It is fatal: silent
// shape or type drift in a science array is a data-integrity hazard.
type ConflictingDatatypeError struct {
	Fragment  string
	Field     string
	Attribute string
	Earlier   string
	Later     string
}

// Error returns the error string naming the field and both declarations.
func (e *ConflictingDatatypeError) Error() string {
	if e == nil {
		return "conflicting datatype <nil>"
	}
	return fmt.Sprintf("fragment %s: field %q: conflicting %s: %s vs %s",
		e.Fragment, e.Field, e.Attribute, e.Earlier, e.Later)
}
