package formschema

import (
	"errors"
	"testing"
)

func TestBuildNormalizes(t *testing.T) {
	t.Parallel()
	def, err := Build([]FieldDescriptor{
		{Name: " full_name ", Type: "STRING", Required: true},
		{Name: "age", Type: "int"},
		{Name: "score", Type: "float", Label: "Score"},
		{Name: "notes", Type: "whatever"},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if got := def.Fields[0].Name; got != "full_name" {
		t.Errorf("name not trimmed, got %q", got)
	}
	if got := def.Fields[0].Label; got != "full_name" {
		t.Errorf("label should default to name, got %q", got)
	}
	if got := def.Fields[1].Type; got != TypeInteger {
		t.Errorf("int should normalize to integer, got %q", got)
	}
	if got := def.Fields[2].Type; got != TypeNumber {
		t.Errorf("float should normalize to number, got %q", got)
	}
	if got := def.Fields[3].Type; got != TypeString {
		t.Errorf("unknown type should fall back to string, got %q", got)
	}
	if got := def.Fields[2].Label; got != "Score" {
		t.Errorf("explicit label must be kept, got %q", got)
	}
}

func TestBuildRejects(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		fields []FieldDescriptor
	}{
		{"empty list", nil},
		{"nameless field", []FieldDescriptor{{Name: "  "}}},
		{"duplicate name", []FieldDescriptor{{Name: "a"}, {Name: "a"}}},
		{"bad pattern", []FieldDescriptor{{Name: "a", Pattern: "["}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.fields)
			if err == nil {
				t.Fatal("expected an error")
			}
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %T", err)
			}
		})
	}
}

func TestFieldLookup(t *testing.T) {
	t.Parallel()
	def, err := Build([]FieldDescriptor{{Name: "email"}, {Name: "age", Type: TypeInteger}})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if _, ok := def.Field("email"); !ok {
		t.Error("email should be declared")
	}
	if _, ok := def.Field("phone"); ok {
		t.Error("phone should not be declared")
	}
	names := def.FieldNames()
	if len(names) != 2 || names[0] != "email" || names[1] != "age" {
		t.Errorf("field names out of order: %v", names)
	}
}

func TestCoerce(t *testing.T) {
	t.Parallel()
	def, err := Build([]FieldDescriptor{
		{Name: "name"},
		{Name: "age", Type: TypeInteger},
		{Name: "budget", Type: TypeNumber},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	record := def.Coerce(map[string]any{
		"name":    "Ali",
		"age":     float64(28), // JSON round trips integers as float64
		"budget":  "1200.50",
		"unknown": "dropped",
		"nil":     nil,
	})
	if got := record["name"]; got != "Ali" {
		t.Errorf("name = %v", got)
	}
	if got := record["age"]; got != int64(28) {
		t.Errorf("age should coerce to int64, got %T %v", got, got)
	}
	if got := record["budget"]; got != float64(1200.50) {
		t.Errorf("budget should parse to float64, got %T %v", got, got)
	}
	if _, ok := record["unknown"]; ok {
		t.Error("unknown keys must be dropped")
	}

	// Non-integral floats cannot become integers and are dropped entirely.
	record = def.Coerce(map[string]any{"age": 28.5})
	if _, ok := record["age"]; ok {
		t.Error("fractional value should not coerce to an integer")
	}

	// Coerce is idempotent: feeding its output back changes nothing.
	first := def.Coerce(map[string]any{"name": "Ali", "age": "28"})
	second := def.Coerce(first)
	if len(second) != len(first) || second["age"] != first["age"] || second["name"] != first["name"] {
		t.Errorf("coerce not idempotent: %v vs %v", first, second)
	}
}
