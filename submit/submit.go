// Package submit delivers an approved record to the verification backend and
// reports a tagged, user-visible outcome. Submitters never retry on their
// own; retry policy belongs to the caller.
package submit

import (
	"context"
	"strings"

	"github.com/farhan32742/nexusform/formschema"
	"github.com/farhan32742/nexusform/types"
)

// Reply prefixes the verification server puts on its tool result text.
const (
	ReplySuccessPrefix     = "SUCCESS:"
	ReplyRejectedPrefix    = "BACKEND_REJECTED:"
	ReplyUnreachablePrefix = "UNREACHABLE:"
)

// Outcome is the submission result surfaced to the end user.
type Outcome struct {
	Tag     types.OutcomeTag `json:"tag"`
	Message string           `json:"message"`
}

type Submitter interface {
	Submit(ctx context.Context, record formschema.Record) (*Outcome, error)
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, record formschema.Record) (*Outcome, error)

func (f SubmitterFunc) Submit(ctx context.Context, record formschema.Record) (*Outcome, error) {
	return f(ctx, record)
}

// ParseReply maps a verification-server reply onto a tagged outcome. Replies
// without a known prefix are treated as backend rejections when flagged as
// errors, successes otherwise.
func ParseReply(text string, isError bool) *Outcome {
	trimmed := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(trimmed, ReplySuccessPrefix):
		return &Outcome{Tag: types.OutcomeSuccess, Message: strings.TrimSpace(trimmed[len(ReplySuccessPrefix):])}
	case strings.HasPrefix(trimmed, ReplyRejectedPrefix):
		return &Outcome{Tag: types.OutcomeBackendRejected, Message: strings.TrimSpace(trimmed[len(ReplyRejectedPrefix):])}
	case strings.HasPrefix(trimmed, ReplyUnreachablePrefix):
		return &Outcome{Tag: types.OutcomeTransportError, Message: strings.TrimSpace(trimmed[len(ReplyUnreachablePrefix):])}
	case isError:
		return &Outcome{Tag: types.OutcomeBackendRejected, Message: trimmed}
	default:
		return &Outcome{Tag: types.OutcomeSuccess, Message: trimmed}
	}
}
