package fragment

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jacoelho/ndschema/errors"
)

type document struct {
	Schema     string      `yaml:"$schema"`
	ID         string      `yaml:"id"`
	AllOf      []yaml.Node `yaml:"allOf"`
	Properties yaml.Node   `yaml:"properties"`
	Required   []string    `yaml:"required"`
}

type memberDoc struct {
	Ref        string    `yaml:"$ref"`
	Properties yaml.Node `yaml:"properties"`
	Required   []string  `yaml:"required"`
}

type fieldDoc struct {
	Title    string  `yaml:"title"`
	FitsHDU  string  `yaml:"fits_hdu"`
	NDim     *int    `yaml:"ndim"`
	Datatype *string `yaml:"datatype"`
	// Default is kept as a raw node so an explicit null default can be
	// told apart from an absent one (Kind is zero only when absent).
	Default yaml.Node `yaml:"default"`
}

// Decode parses one schema document into a Fragment. The id becomes the
// fragment's registry name, normally its document location. Decode performs
// no I/O beyond the provided bytes.
func Decode(data []byte, id string) (*Fragment, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &errors.MalformedSchemaError{
			Fragment: id,
			Reason:   fmt.Sprintf("parse yaml: %v", err),
		}
	}

	frag := &Fragment{
		ID:     id,
		Schema: doc.Schema,
		URI:    doc.ID,
	}

	for i := range doc.AllOf {
		member, err := decodeMember(&doc.AllOf[i], id, i)
		if err != nil {
			return nil, err
		}
		frag.Members = append(frag.Members, member)
	}

	// A fragment may carry a top-level field-set with no composition list.
	if doc.Properties.Kind != 0 {
		fields, order, err := decodeFieldSet(&doc.Properties, id)
		if err != nil {
			return nil, err
		}
		frag.Members = append(frag.Members, Member{
			Fields:   fields,
			Order:    order,
			Required: doc.Required,
		})
	} else if len(doc.Required) > 0 {
		// A top-level required list may constrain fields the composition
		// introduces; carry it as a trailing requirements-only member.
		frag.Members = append(frag.Members, Member{Required: doc.Required})
	}

	return frag, nil
}

func decodeMember(node *yaml.Node, id string, index int) (Member, error) {
	if node.Kind != yaml.MappingNode {
		return Member{}, &errors.MalformedSchemaError{
			Fragment: id,
			Reason:   fmt.Sprintf("composition member %d is not a mapping", index),
		}
	}

	var md memberDoc
	if err := node.Decode(&md); err != nil {
		return Member{}, &errors.MalformedSchemaError{
			Fragment: id,
			Reason:   fmt.Sprintf("composition member %d: %v", index, err),
		}
	}

	hasRef := md.Ref != ""
	hasFields := md.Properties.Kind != 0
	switch {
	case hasRef && hasFields:
		return Member{}, &errors.MalformedSchemaError{
			Fragment: id,
			Reason:   fmt.Sprintf("composition member %d mixes $ref and properties", index),
		}
	case hasRef:
		return Member{Ref: md.Ref}, nil
	case hasFields:
		fields, order, err := decodeFieldSet(&md.Properties, id)
		if err != nil {
			return Member{}, err
		}
		return Member{Fields: fields, Order: order, Required: md.Required}, nil
	default:
		return Member{}, &errors.MalformedSchemaError{
			Fragment: id,
			Reason:   fmt.Sprintf("composition member %d is neither a $ref nor a field-set", index),
		}
	}
}

func decodeFieldSet(node *yaml.Node, id string) (map[string]FieldSpec, []string, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nil, &errors.MalformedSchemaError{
			Fragment: id,
			Reason:   "properties is not a mapping",
		}
	}

	fields := make(map[string]FieldSpec, len(node.Content)/2)
	order := make([]string, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		spec, err := decodeField(node.Content[i+1], id, name)
		if err != nil {
			return nil, nil, err
		}
		fields[name] = spec
		order = append(order, name)
	}

	return fields, order, nil
}

func decodeField(node *yaml.Node, id, name string) (FieldSpec, error) {
	var fd fieldDoc
	if err := node.Decode(&fd); err != nil {
		return FieldSpec{}, &errors.MalformedSchemaError{
			Fragment: id,
			Field:    name,
			Reason:   err.Error(),
		}
	}

	spec := FieldSpec{
		Title:       fd.Title,
		StorageSlot: fd.FitsHDU,
	}

	if fd.NDim != nil {
		if *fd.NDim < 0 {
			return FieldSpec{}, &errors.MalformedSchemaError{
				Fragment: id,
				Field:    name,
				Reason:   fmt.Sprintf("negative rank %d", *fd.NDim),
			}
		}
		rank := *fd.NDim
		spec.Rank = &rank
	}

	if fd.Datatype != nil {
		dt, err := ParseDatatype(*fd.Datatype)
		if err != nil {
			return FieldSpec{}, &errors.MalformedSchemaError{
				Fragment: id,
				Field:    name,
				Reason:   err.Error(),
			}
		}
		spec.Datatype = dt
	}

	if fd.Default.Kind != 0 {
		var value any
		if err := fd.Default.Decode(&value); err != nil {
			return FieldSpec{}, &errors.MalformedSchemaError{
				Fragment: id,
				Field:    name,
				Reason:   fmt.Sprintf("default: %v", err),
			}
		}
		spec.Default = value
		spec.HasDefault = true
	}

	return spec, nil
}
