package formschema

import (
	"testing"

	"github.com/farhan32742/nexusform/types"
)

func registrationSchema(t *testing.T) *Definition {
	t.Helper()
	def, err := Build([]FieldDescriptor{
		{Name: "full_name", Required: true, Label: "Full Name"},
		{Name: "age", Type: TypeInteger, Required: true, Label: "Age"},
		{Name: "email", Required: true, Label: "Email", Pattern: `[\w.-]+@[\w.-]+\.\w+`},
		{Name: "destination", Required: true, Label: "Destination"},
		{Name: "note", Label: "Note"},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return def
}

func TestValidateMissingAndInvalid(t *testing.T) {
	t.Parallel()
	def := registrationSchema(t)

	issues := def.Validate(Record{
		"full_name": "Ali Khan",
		"email":     "not-an-email",
	})
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %v", issues)
	}
	// Issues come back in schema order.
	if issues[0].Field != "age" || issues[0].Kind != types.IssueMissing {
		t.Errorf("issue 0 = %+v", issues[0])
	}
	if issues[1].Field != "email" || issues[1].Kind != types.IssueInvalidFormat {
		t.Errorf("issue 1 = %+v", issues[1])
	}
	if issues[2].Field != "destination" || issues[2].Kind != types.IssueMissing {
		t.Errorf("issue 2 = %+v", issues[2])
	}
	if got := issues[0].String(); got != "age (Missing)" {
		t.Errorf("issue string = %q", got)
	}
	if got := issues[1].String(); got != "email (Invalid Format)" {
		t.Errorf("issue string = %q", got)
	}
}

func TestValidateCleanRecord(t *testing.T) {
	t.Parallel()
	def := registrationSchema(t)
	issues := def.Validate(Record{
		"full_name":   "Ali Khan",
		"age":         int64(28),
		"email":       "ali@example.com",
		"destination": "Istanbul",
	})
	if len(issues) != 0 {
		t.Fatalf("expected clean record, got %v", issues)
	}
}

func TestValidateBlankValues(t *testing.T) {
	t.Parallel()
	def := registrationSchema(t)

	// Whitespace-only counts as missing for required fields.
	issues := def.Validate(Record{
		"full_name":   "   ",
		"age":         int64(28),
		"email":       "ali@example.com",
		"destination": "Istanbul",
	})
	if len(issues) != 1 || issues[0].Field != "full_name" || issues[0].Kind != types.IssueMissing {
		t.Fatalf("expected full_name missing, got %v", issues)
	}

	// A blank optional field is neither missing nor invalid.
	issues = def.Validate(Record{
		"full_name":   "Ali Khan",
		"age":         int64(28),
		"email":       "ali@example.com",
		"destination": "Istanbul",
		"note":        "",
	})
	if len(issues) != 0 {
		t.Fatalf("blank optional field should not be reported, got %v", issues)
	}
}

func TestValidatePatternAnchoring(t *testing.T) {
	t.Parallel()
	def, err := Build([]FieldDescriptor{
		{Name: "code", Required: true, Pattern: `[A-Z]{2}\d{3}`},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	// Patterns match from the start of the value, not anywhere inside it.
	if issues := def.Validate(Record{"code": "xxAB123"}); len(issues) != 1 {
		t.Errorf("mid-string match should be rejected, got %v", issues)
	}
	// A prefix match suffices, trailing text does not fail the check.
	if issues := def.Validate(Record{"code": "AB123-extra"}); len(issues) != 0 {
		t.Errorf("prefix match should pass, got %v", issues)
	}
}

func TestValidateIsPure(t *testing.T) {
	t.Parallel()
	def := registrationSchema(t)
	record := Record{"full_name": "Ali", "email": "bad"}
	first := def.Validate(record)
	second := def.Validate(record)
	if len(first) != len(second) {
		t.Fatalf("validation not deterministic: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("issue %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
	if len(record) != 2 {
		t.Error("validation must not mutate the record")
	}
}

func TestValidateNumericTypes(t *testing.T) {
	t.Parallel()
	def, err := Build([]FieldDescriptor{
		{Name: "age", Type: TypeInteger, Required: true},
		{Name: "budget", Type: TypeNumber},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if issues := def.Validate(Record{"age": "twenty"}); len(issues) != 1 || issues[0].Kind != types.IssueInvalidFormat {
		t.Errorf("non-numeric integer should be invalid, got %v", issues)
	}
	if issues := def.Validate(Record{"age": int64(28), "budget": "abc"}); len(issues) != 1 || issues[0].Field != "budget" {
		t.Errorf("non-numeric number should be invalid, got %v", issues)
	}
}
