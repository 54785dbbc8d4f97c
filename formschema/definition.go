// Package formschema models a runtime-defined form: an ordered list of field
// descriptors fetched from an external source, plus validation and coercion of
// candidate records against it.
package formschema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/farhan32742/nexusform/types"
)

// FieldType is the wire-level type of a single form field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
)

// FieldDescriptor describes one field of a dynamically supplied form schema.
type FieldDescriptor struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Pattern     string    `json:"regex,omitempty"`
	Label       string    `json:"label,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Definition is an immutable form schema for one session. Field order is
// preserved from the source and drives issue ordering.
type Definition struct {
	Fields []FieldDescriptor `json:"fields"`
}

// SchemaError reports a schema that cannot seed a session.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "invalid form schema: " + e.Reason
}

// Build normalizes a raw descriptor list into a Definition. It fails if the
// list is empty, a descriptor has no name, a name repeats, or a validation
// pattern does not compile.
func Build(fields []FieldDescriptor) (*Definition, error) {
	if len(fields) == 0 {
		return nil, &SchemaError{Reason: "no fields defined"}
	}
	seen := make(map[string]struct{}, len(fields))
	normalized := make([]FieldDescriptor, 0, len(fields))
	for i, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return nil, &SchemaError{Reason: fmt.Sprintf("field %d has no name", i)}
		}
		if _, dup := seen[name]; dup {
			return nil, &SchemaError{Reason: fmt.Sprintf("duplicate field %q", name)}
		}
		seen[name] = struct{}{}
		field.Name = name
		field.Type = normalizeType(field.Type)
		if field.Pattern != "" {
			if _, err := regexp.Compile(field.Pattern); err != nil {
				return nil, &SchemaError{Reason: fmt.Sprintf("field %q pattern: %v", name, err)}
			}
		}
		if field.Label == "" {
			field.Label = name
		}
		normalized = append(normalized, field)
	}
	return &Definition{Fields: normalized}, nil
}

func normalizeType(t FieldType) FieldType {
	switch strings.ToLower(string(t)) {
	case "int", "integer":
		return TypeInteger
	case "number", "float", "double":
		return TypeNumber
	default:
		return TypeString
	}
}

// Field returns the descriptor for name, if declared.
func (d *Definition) Field(name string) (FieldDescriptor, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldDescriptor{}, false
}

// FieldNames returns the declared names in schema order.
func (d *Definition) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for _, field := range d.Fields {
		names = append(names, field.Name)
	}
	return names
}

// Summaries returns a display view of the fields for prompt rendering.
func (d *Definition) Summaries() []types.FieldSummary {
	out := make([]types.FieldSummary, 0, len(d.Fields))
	for _, field := range d.Fields {
		out = append(out, types.FieldSummary{
			Name:        field.Name,
			Type:        string(field.Type),
			Label:       field.Label,
			Description: field.Description,
			Required:    field.Required,
		})
	}
	return out
}
