package types

// IssueKind classifies why a field failed validation.
type IssueKind string

const (
	IssueMissing       IssueKind = "missing"
	IssueInvalidFormat IssueKind = "invalid-format"
)

// FieldIssue is one validation finding for a single schema field.
type FieldIssue struct {
	Field  string    `json:"field"`
	Kind   IssueKind `json:"kind"`
	Label  string    `json:"label,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

func (i FieldIssue) String() string {
	if i.Kind == IssueMissing {
		return i.Field + " (Missing)"
	}
	return i.Field + " (Invalid Format)"
}

// FieldSummary is a display-oriented view of a schema field, used when
// rendering prompt context tables without importing the schema package.
type FieldSummary struct {
	Name        string
	Type        string
	Label       string
	Description string
	Required    bool
}

// OutcomeTag labels the result of a backend submission.
type OutcomeTag string

const (
	OutcomeSuccess         OutcomeTag = "success"
	OutcomeBackendRejected OutcomeTag = "backend-error"
	OutcomeTransportError  OutcomeTag = "transport-error"
)
