// Package clarify phrases one natural-language question covering every
// outstanding validation issue, so the user can fix all of them in a single
// turn.
package clarify

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/farhan32742/nexusform/types"
)

// Request is the clarifier input: the current issues plus the trailing
// conversation window for tone and context.
type Request struct {
	Issues       []types.FieldIssue
	Conversation []*schema.Message
}

// Generator produces the assistant question for a failed validation pass.
// Implementations must cover all issues in one message, never one per field.
type Generator interface {
	Clarify(ctx context.Context, req *Request) (string, error)
}
