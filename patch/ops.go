// Package patch applies extracted field updates to a record as RFC6902
// operations, so merges stay expressible and auditable as plain JSON patches.
package patch

import "sort"

const (
	OperationAdd     = "add"
	OperationReplace = "replace"
	OperationRemove  = "remove"
)

type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// SetOps turns an extracted field map into replace operations, one per field,
// in name order. Apply downgrades replace to add for keys the record does not
// hold yet.
func SetOps(fields map[string]any) []Operation {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	ops := make([]Operation, 0, len(names))
	for _, name := range names {
		ops = append(ops, Operation{
			Op:    OperationReplace,
			Path:  "/" + escapePointerToken(name),
			Value: fields[name],
		})
	}
	return ops
}

func escapePointerToken(token string) string {
	out := make([]byte, 0, len(token))
	for i := 0; i < len(token); i++ {
		switch token[i] {
		case '~':
			out = append(out, '~', '0')
		case '/':
			out = append(out, '~', '1')
		default:
			out = append(out, token[i])
		}
	}
	return string(out)
}
