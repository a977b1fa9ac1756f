// Package validator walks an effective schema against a candidate data
// object, collecting every finding in one pass.
package validator

import (
	"strconv"

	"github.com/jacoelho/ndschema/errors"
	"github.com/jacoelho/ndschema/internal/composer"
	"github.com/jacoelho/ndschema/internal/object"
)

// Validated is the output of a validation pass: a new data object with
// declared defaults filled in for absent optional fields.
type Validated struct {
	// Fields holds the validated object, including synthesized defaults
	// and passed-through unknown fields.
	Fields object.DataObject

	synthesized map[string]bool
}

// Synthesized reports whether a field value was filled in from a schema
// default rather than supplied by the caller. Downstream writers use this
// to distinguish user data from schema data.
func (v *Validated) Synthesized(name string) bool {
	return v.synthesized[name]
}

// Validate checks a data object against an effective schema. Checks are
// advisory-strict: mismatches are recorded and validation proceeds, so a
// caller sees every problem in one pass. Fields absent from the schema pass
// through unchanged; the schema is a minimum contract, not a whitelist.
// The caller's object is never mutated.
func Validate(es *composer.EffectiveSchema, obj object.DataObject) (*Validated, errors.Report) {
	out := obj.Clone()
	if out == nil {
		out = make(object.DataObject)
	}
	synthesized := make(map[string]bool)
	var report errors.Report

	for _, name := range es.Order {
		spec := es.Fields[name]
		value, present := obj[name]
		if !present {
			if spec.HasDefault {
				out[name] = spec.Default
				synthesized[name] = true
			}
			continue
		}

		if spec.Rank != nil {
			actual := object.RankOf(value)
			if actual != *spec.Rank {
				issue := errors.NewIssuef(errors.RankMismatch, name,
					"value rank %d does not match declared rank %d", actual, *spec.Rank)
				issue.Expected = strconv.Itoa(*spec.Rank)
				issue.Actual = strconv.Itoa(actual)
				report = append(report, issue)
			}
		}

		if spec.Datatype.IsSet() {
			if actual, ok := object.DatatypeOf(value); ok && actual != spec.Datatype {
				issue := errors.NewIssuef(errors.DatatypeMismatch, name,
					"value datatype %s does not match declared datatype %s", actual, spec.Datatype)
				issue.Expected = spec.Datatype.String()
				issue.Actual = actual.String()
				report = append(report, issue)
			}
		}
	}

	for _, name := range es.Required {
		// A synthesized default still satisfies presence; only fields
		// absent from the output are reported.
		if _, present := out[name]; !present {
			report = append(report, errors.NewIssuef(errors.RequiredMissing, name,
				"required field %s is absent", name))
		}
	}

	return &Validated{Fields: out, synthesized: synthesized}, report
}
