package ndschema

import (
	"github.com/jacoelho/ndschema/errors"
	"github.com/jacoelho/ndschema/internal/binding"
	"github.com/jacoelho/ndschema/internal/composer"
	"github.com/jacoelho/ndschema/internal/metrics"
	"github.com/jacoelho/ndschema/internal/object"
	"github.com/jacoelho/ndschema/internal/validator"
)

// Model wraps a composed effective schema with convenience methods.
// A Model is immutable and safe for concurrent use by multiple goroutines.
type Model struct {
	effective *composer.EffectiveSchema
	bindings  binding.Table
	metrics   *metrics.Collector
}

// Validated is the output of a validation pass: a new data object with
// declared defaults filled in for absent optional fields.
type Validated = validator.Validated

func newModel(es *composer.EffectiveSchema, collector *metrics.Collector) *Model {
	return &Model{
		effective: es,
		bindings:  binding.FromSchema(es),
		metrics:   collector,
	}
}

// Name returns the top-level fragment name the model was composed for.
func (m *Model) Name() string {
	if m == nil || m.effective == nil {
		return ""
	}
	return m.effective.Model
}

// Validate checks a data object against the model's effective schema.
// Mismatches are collected, not raised, so the report covers every field in
// one pass; an empty report means success. The caller's object is never
// mutated; the returned object carries synthesized defaults and passes
// unknown fields through unchanged.
func (m *Model) Validate(obj Object) (*Validated, Report) {
	if m == nil || m.effective == nil {
		return nil, Report{errors.NewIssue(errors.SchemaNotLoaded, "", "model not loaded")}
	}

	validated, report := validator.Validate(m.effective, object.DataObject(obj))
	if m.metrics != nil {
		m.metrics.ValidationsTotal.WithLabelValues(m.Name()).Inc()
		for _, issue := range report {
			m.metrics.IssuesTotal.WithLabelValues(m.Name(), string(issue.Code)).Inc()
		}
	}
	return validated, report
}

// Bindings returns the storage binding table: field name to the container
// extension the field is persisted to. Fields without a declared slot are
// absent from the table.
func (m *Model) Bindings() Bindings {
	if m == nil {
		return binding.Table{}
	}
	return m.bindings
}

// Fields returns the effective field names in schema order.
func (m *Model) Fields() []string {
	if m == nil || m.effective == nil {
		return nil
	}
	out := make([]string, len(m.effective.Order))
	copy(out, m.effective.Order)
	return out
}

// Field returns the merged spec for one field.
func (m *Model) Field(name string) (FieldSpec, bool) {
	if m == nil || m.effective == nil {
		return FieldSpec{}, false
	}
	return m.effective.Field(name)
}

// Required returns the field names every conforming data object must carry.
func (m *Model) Required() []string {
	if m == nil || m.effective == nil {
		return nil
	}
	out := make([]string, len(m.effective.Required))
	copy(out, m.effective.Required)
	return out
}
