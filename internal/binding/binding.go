// Package binding derives the storage binding table from an effective
// schema: the mapping from field name to the container extension the field
// is persisted to. It is a read-only view consumed by external I/O layers.
package binding

import "github.com/jacoelho/ndschema/internal/composer"

// Table maps field name to storage slot. Fields without a declared slot are
// absent; they are metadata-only and not persisted to a discrete extension.
type Table struct {
	slots  map[string]string
	fields []string
}

// FromSchema projects the declared storage slots of an effective schema.
func FromSchema(es *composer.EffectiveSchema) Table {
	t := Table{slots: make(map[string]string)}
	if es == nil {
		return t
	}
	for _, name := range es.Order {
		spec := es.Fields[name]
		if spec.StorageSlot == "" {
			continue
		}
		t.slots[name] = spec.StorageSlot
		t.fields = append(t.fields, name)
	}
	return t
}

// Slot returns the storage slot bound to a field.
func (t Table) Slot(field string) (string, bool) {
	slot, ok := t.slots[field]
	return slot, ok
}

// Fields returns the bound field names in schema order.
func (t Table) Fields() []string {
	out := make([]string, len(t.fields))
	copy(out, t.fields)
	return out
}

// Len returns the number of bound fields.
func (t Table) Len() int {
	return len(t.slots)
}
