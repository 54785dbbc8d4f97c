package session

import (
	"context"

	"github.com/farhan32742/nexusform/formschema"
)

// The methods below are the caller-facing operations a host exposes. Each one
// reduces to a single Step so the state machine has exactly one code path.

// SubmitUserTurn appends a user message and advances the session to its next
// suspend point.
func (e *Engine) SubmitUserTurn(ctx context.Context, id, text string) (*Reply, error) {
	return e.Step(ctx, id, Action{Kind: ActionKindUserTurn, Text: text})
}

// Approve releases the reviewed record to the submitter.
func (e *Engine) Approve(ctx context.Context, id string) (*Reply, error) {
	return e.Step(ctx, id, Action{Kind: ActionKindApprove})
}

// Reject records the correction as a user turn, clears the approval flag and
// re-runs extraction on it.
func (e *Engine) Reject(ctx context.Context, id, correction string) (*Reply, error) {
	return e.Step(ctx, id, Action{Kind: ActionKindReject, Text: correction})
}

// Resume continues a session from its persisted cursor without new input.
func (e *Engine) Resume(ctx context.Context, id string) (*Reply, error) {
	return e.Step(ctx, id, Action{Kind: ActionKindResume})
}

// CurrentRecord returns the record as currently extracted.
func (e *Engine) CurrentRecord(ctx context.Context, id string) (formschema.Record, error) {
	unlock := e.lockSession(id)
	defer unlock()
	state, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return state.Record.Clone(), nil
}

// Status returns a read-only snapshot reply without advancing the machine.
func (e *Engine) Status(ctx context.Context, id string) (*Reply, error) {
	unlock := e.lockSession(id)
	defer unlock()
	state, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return replyFor(state, state.LastQuestion), nil
}

// Abandon terminates a session explicitly. The state is kept as an archive
// record; callers that want it gone can delete it from the store.
func (e *Engine) Abandon(ctx context.Context, id string) (*Reply, error) {
	unlock := e.lockSession(id)
	defer unlock()
	state, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	state.Status = StatusTerminated
	state.LastQuestion = "The session was abandoned."
	if err := e.save(ctx, state); err != nil {
		return nil, err
	}
	return replyFor(state, state.LastQuestion), nil
}
