package patch

import (
	"testing"

	"github.com/farhan32742/nexusform/formschema"
)

func TestSetOps(t *testing.T) {
	t.Parallel()
	ops := SetOps(map[string]any{"b": 2, "a": 1, "with/slash": "x", "with~tilde": "y"})
	if len(ops) != 4 {
		t.Fatalf("expected 4 ops, got %d", len(ops))
	}
	// Name order, with pointer tokens escaped.
	if ops[0].Path != "/a" || ops[1].Path != "/b" {
		t.Errorf("ops not sorted by name: %+v", ops)
	}
	if ops[2].Path != "/with~1slash" {
		t.Errorf("slash not escaped: %q", ops[2].Path)
	}
	if ops[3].Path != "/with~0tilde" {
		t.Errorf("tilde not escaped: %q", ops[3].Path)
	}
	for _, op := range ops {
		if op.Op != OperationReplace {
			t.Errorf("op = %q, want replace", op.Op)
		}
	}
	if SetOps(nil) != nil {
		t.Error("empty field map should produce no ops")
	}
}

func TestApplyAddAndReplace(t *testing.T) {
	t.Parallel()
	current := formschema.Record{"name": "Ali"}
	out, err := Apply(current, SetOps(map[string]any{"name": "Ali Khan", "city": "Lahore"}))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if out["name"] != "Ali Khan" {
		t.Errorf("name = %v", out["name"])
	}
	// Replace on an absent key is downgraded to add instead of failing.
	if out["city"] != "Lahore" {
		t.Errorf("city = %v", out["city"])
	}
	if current["name"] != "Ali" {
		t.Error("input record must not be mutated")
	}
	if _, ok := current["city"]; ok {
		t.Error("input record must not be mutated")
	}
}

func TestApplyRemove(t *testing.T) {
	t.Parallel()
	current := formschema.Record{"name": "Ali", "city": "Lahore"}
	out, err := Apply(current, []Operation{
		{Op: OperationRemove, Path: "/city"},
		{Op: OperationRemove, Path: "/missing"}, // dropped, not an error
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, ok := out["city"]; ok {
		t.Error("city should be removed")
	}
	if out["name"] != "Ali" {
		t.Errorf("name = %v", out["name"])
	}
}

func TestApplyEmptyOps(t *testing.T) {
	t.Parallel()
	current := formschema.Record{"name": "Ali"}
	out, err := Apply(current, nil)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if out["name"] != "Ali" {
		t.Errorf("record changed on empty ops: %v", out)
	}
}

func TestApplyNilRecord(t *testing.T) {
	t.Parallel()
	out, err := Apply(nil, SetOps(map[string]any{"name": "Ali"}))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if out["name"] != "Ali" {
		t.Errorf("name = %v", out["name"])
	}
}
