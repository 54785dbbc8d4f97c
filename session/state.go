// Package session owns the per-session state machine that sequences
// extraction, validation, clarification, human review and submission. Every
// suspend point is an explicit return to the caller; state is persisted after
// each transition so a session survives process restarts.
package session

import (
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/farhan32742/nexusform/formschema"
	"github.com/farhan32742/nexusform/submit"
	"github.com/farhan32742/nexusform/types"
)

// Status identifies the state-machine node that runs next (or the suspend
// point the session is parked at).
type Status string

const (
	// StatusExtracting waits for a user turn, then runs the extractor.
	StatusExtracting Status = "extracting"
	// StatusValidating is transient: the validator inspects the record.
	StatusValidating Status = "validating"
	// StatusAwaitingClarification suspends until the next user turn.
	StatusAwaitingClarification Status = "awaiting-clarification"
	// StatusAwaitingReview suspends until an approve/reject decision.
	StatusAwaitingReview Status = "awaiting-review"
	// StatusSubmitting is transient: the submitter delivers the record.
	StatusSubmitting Status = "submitting"
	// StatusTerminated is terminal.
	StatusTerminated Status = "terminated"
)

// Suspended reports whether s is a point where the engine has handed control
// back to the caller and waits for external input.
func (s Status) Suspended() bool {
	switch s {
	case StatusAwaitingClarification, StatusAwaitingReview, StatusTerminated:
		return true
	default:
		return false
	}
}

// PendingAction names what the caller must provide next.
type PendingAction string

const (
	ActionUserTurn PendingAction = "user-turn"
	ActionReview   PendingAction = "review"
	ActionResume   PendingAction = "resume"
	ActionNone     PendingAction = "none"
)

// State is the full persisted session: schema, record, conversation,
// validation result, approval flag and the state-machine cursor. The
// conversation is the authoritative full history; only a trailing window is
// ever sent to the model.
type State struct {
	ID     string                 `json:"id"`
	Status Status                 `json:"status"`
	Schema *formschema.Definition `json:"schema"`
	Record formschema.Record      `json:"record"`

	Conversation []*schema.Message  `json:"conversation"`
	Issues       []types.FieldIssue `json:"issues,omitempty"`

	// Approved is set only by an explicit approve action and reset by any
	// rejection or correction.
	Approved bool `json:"approved"`

	// TurnPending marks an appended user turn the extractor has not consumed
	// yet; it makes resume-after-crash deterministic.
	TurnPending bool `json:"turn_pending"`

	LastQuestion string          `json:"last_question,omitempty"`
	Outcome      *submit.Outcome `json:"outcome,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pending derives the action the caller must supply for the session to make
// progress.
func (s *State) Pending() PendingAction {
	switch s.Status {
	case StatusExtracting:
		if s.TurnPending {
			return ActionResume
		}
		return ActionUserTurn
	case StatusAwaitingClarification:
		return ActionUserTurn
	case StatusAwaitingReview:
		return ActionReview
	case StatusValidating, StatusSubmitting:
		return ActionResume
	default:
		return ActionNone
	}
}

// Reply is what one engine step hands back to the host for display.
type Reply struct {
	SessionID string             `json:"session_id"`
	Status    Status             `json:"status"`
	Message   string             `json:"message,omitempty"`
	Record    formschema.Record  `json:"record,omitempty"`
	Issues    []types.FieldIssue `json:"issues,omitempty"`
	Outcome   *submit.Outcome    `json:"outcome,omitempty"`
	Pending   PendingAction      `json:"pending"`
}

func replyFor(state *State, message string) *Reply {
	return &Reply{
		SessionID: state.ID,
		Status:    state.Status,
		Message:   message,
		Record:    state.Record,
		Issues:    state.Issues,
		Outcome:   state.Outcome,
		Pending:   state.Pending(),
	}
}
