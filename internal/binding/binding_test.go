package binding

import (
	"testing"

	"github.com/jacoelho/ndschema/internal/composer"
	"github.com/jacoelho/ndschema/internal/fragment"
)

func TestFromSchema(t *testing.T) {
	es := &composer.EffectiveSchema{
		Model: "cube.schema.yaml",
		Fields: map[string]fragment.FieldSpec{
			"data":      {StorageSlot: "SCI"},
			"dq":        {StorageSlot: "DQ"},
			"err":       {StorageSlot: "ERR"},
			"telescope": {Title: "metadata only"},
		},
		Order: []string{"data", "dq", "err", "telescope"},
	}

	table := FromSchema(es)
	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", table.Len())
	}

	slot, ok := table.Slot("data")
	if !ok || slot != "SCI" {
		t.Errorf("Slot(data) = %q, %v, want SCI, true", slot, ok)
	}

	// Fields without a declared slot are metadata-only and absent.
	if _, ok := table.Slot("telescope"); ok {
		t.Error("Slot(telescope) found, want absent")
	}

	fields := table.Fields()
	want := []string{"data", "dq", "err"}
	if len(fields) != len(want) {
		t.Fatalf("Fields() = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("Fields() = %v, want %v", fields, want)
		}
	}
}

func TestFromSchemaNil(t *testing.T) {
	table := FromSchema(nil)
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
}
