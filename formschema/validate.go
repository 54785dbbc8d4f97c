package formschema

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/farhan32742/nexusform/types"
)

// Compiled patterns are cached process-wide; Build already guaranteed they
// compile, so a cache miss never fails at validation time.
var (
	patternMu    sync.RWMutex
	patternCache = map[string]*regexp.Regexp{}
)

func compiledPattern(pattern string) *regexp.Regexp {
	patternMu.RLock()
	re, ok := patternCache[pattern]
	patternMu.RUnlock()
	if ok {
		return re
	}
	// Anchor at the start to match the source system's semantics.
	re, err := regexp.Compile(`\A(?:` + pattern + `)`)
	if err != nil {
		return nil
	}
	patternMu.Lock()
	patternCache[pattern] = re
	patternMu.Unlock()
	return re
}

// Validate checks record against the schema and reports one issue per
// offending field, in schema order. It is pure: no I/O, no mutation, and
// identical inputs always produce identical results.
func (d *Definition) Validate(record Record) []types.FieldIssue {
	var issues []types.FieldIssue
	for _, field := range d.Fields {
		value, present := record[field.Name]
		blank := !present || strings.TrimSpace(Stringify(value)) == ""
		if blank {
			if field.Required {
				issues = append(issues, types.FieldIssue{
					Field: field.Name,
					Kind:  types.IssueMissing,
					Label: field.Label,
				})
			}
			continue
		}
		if issue, ok := checkFormat(field, value); !ok {
			issues = append(issues, issue)
		}
	}
	return issues
}

func checkFormat(field FieldDescriptor, value any) (types.FieldIssue, bool) {
	issue := types.FieldIssue{
		Field: field.Name,
		Kind:  types.IssueInvalidFormat,
		Label: field.Label,
	}
	if field.Pattern != "" {
		re := compiledPattern(field.Pattern)
		if re != nil && !re.MatchString(Stringify(value)) {
			issue.Detail = "value does not match the expected format"
			return issue, false
		}
		return types.FieldIssue{}, true
	}
	switch field.Type {
	case TypeInteger:
		if _, err := strconv.ParseInt(strings.TrimSpace(Stringify(value)), 10, 64); err != nil {
			issue.Detail = "expected a whole number"
			return issue, false
		}
	case TypeNumber:
		if _, err := strconv.ParseFloat(strings.TrimSpace(Stringify(value)), 64); err != nil {
			issue.Detail = "expected a number"
			return issue, false
		}
	}
	return types.FieldIssue{}, true
}
