// Package composer merges a resolved fragment's ordered member list into
// one effective schema.
package composer

import (
	"fmt"
	"strconv"

	"github.com/jacoelho/ndschema/errors"
	"github.com/jacoelho/ndschema/internal/fragment"
)

// EffectiveSchema is the fully resolved and merged schema for one model.
// It is derived state: regenerated whenever its source fragments reload,
// and consumed read-only by the validator and the binding table.
type EffectiveSchema struct {
	// Model is the top-level fragment name the schema was composed for.
	Model string
	// Fields maps field name to its merged spec.
	Fields map[string]fragment.FieldSpec
	// Order lists field names by first appearance across members.
	Order []string
	// Required is the union of all member required lists.
	Required []string
}

// Field returns the merged spec for one field.
func (es *EffectiveSchema) Field(name string) (fragment.FieldSpec, bool) {
	spec, ok := es.Fields[name]
	return spec, ok
}

// Compose merges the flattened, ordered member list of a resolved fragment.
// Fields are merged by name; a later member's attributes override an earlier
// member's per attribute, so a member supplying only a default does not
// erase an earlier member's datatype.
func Compose(resolved *fragment.Fragment) (*EffectiveSchema, error) {
	if resolved == nil {
		return nil, fmt.Errorf("compose: nil fragment")
	}
	if !resolved.Resolved() {
		return nil, fmt.Errorf("compose %s: fragment has unresolved references", resolved.ID)
	}

	es := &EffectiveSchema{
		Model:  resolved.ID,
		Fields: make(map[string]fragment.FieldSpec),
	}
	requiredSeen := make(map[string]bool)

	for _, member := range resolved.Members {
		for _, name := range member.Order {
			spec := member.Fields[name]
			earlier, ok := es.Fields[name]
			if !ok {
				es.Fields[name] = spec
				es.Order = append(es.Order, name)
				continue
			}
			merged, err := mergeField(resolved.ID, name, earlier, spec)
			if err != nil {
				return nil, err
			}
			es.Fields[name] = merged
		}
		for _, name := range member.Required {
			if requiredSeen[name] {
				continue
			}
			requiredSeen[name] = true
			es.Required = append(es.Required, name)
		}
	}

	return es, nil
}

// mergeField applies the later member's attributes over the earlier ones.
// Differing ranks, or differing datatypes on a rank-bearing field, are
// authoring defects and fail rather than silently resolving.
func mergeField(model, name string, earlier, later fragment.FieldSpec) (fragment.FieldSpec, error) {
	merged := earlier

	if later.Rank != nil {
		if earlier.Rank != nil && *earlier.Rank != *later.Rank {
			return fragment.FieldSpec{}, &errors.ConflictingDatatypeError{
				Fragment:  model,
				Field:     name,
				Attribute: "rank",
				Earlier:   strconv.Itoa(*earlier.Rank),
				Later:     strconv.Itoa(*later.Rank),
			}
		}
		merged.Rank = later.Rank
	}

	if later.Datatype.IsSet() {
		if earlier.Datatype.IsSet() && earlier.Datatype != later.Datatype {
			// Redefining a scalar's type is a pure override; changing the
			// element type of an array field is not.
			if earlier.Rank != nil || later.Rank != nil {
				return fragment.FieldSpec{}, &errors.ConflictingDatatypeError{
					Fragment:  model,
					Field:     name,
					Attribute: "datatype",
					Earlier:   earlier.Datatype.String(),
					Later:     later.Datatype.String(),
				}
			}
		}
		merged.Datatype = later.Datatype
	}

	if later.Title != "" {
		merged.Title = later.Title
	}
	if later.StorageSlot != "" {
		merged.StorageSlot = later.StorageSlot
	}
	if later.HasDefault {
		merged.Default = later.Default
		merged.HasDefault = true
	}

	return merged, nil
}
