package formschema

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is the partially filled form data, keyed by schema field name.
// Only keys declared in the schema are ever stored.
type Record map[string]any

// Clone returns a shallow copy; values are scalars after Coerce.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Coerce filters a model-produced value map against the schema: unknown keys
// are dropped, declared keys are converted to the declared type, and values
// that cannot be converted are dropped rather than stored.
func (d *Definition) Coerce(values map[string]any) Record {
	out := make(Record, len(values))
	for name, value := range values {
		field, ok := d.Field(name)
		if !ok || value == nil {
			continue
		}
		coerced, ok := coerceValue(value, field.Type)
		if ok {
			out[name] = coerced
		}
	}
	return out
}

func coerceValue(value any, t FieldType) (any, bool) {
	switch t {
	case TypeInteger:
		return coerceInteger(value)
	case TypeNumber:
		return coerceNumber(value)
	default:
		return coerceString(value)
	}
}

func coerceInteger(value any) (any, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) {
			return nil, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	default:
		return nil, false
	}
}

func coerceNumber(value any) (any, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return nil, false
	}
}

func coerceString(value any) (any, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return nil, false
	}
}

// Stringify renders a record value the way the validator and prompts see it.
func Stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
