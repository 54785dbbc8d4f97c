// Package extract pulls structured field values out of free-form user text by
// forcing the chat model through a record-update tool call, then merges the
// result into the current record.
package extract

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/farhan32742/nexusform/formschema"
)

// Request carries everything one extraction step needs. Conversation is the
// trailing window the host decided to expose to the model, not necessarily
// the full persisted history.
type Request struct {
	Schema       *formschema.Definition
	Conversation []*schema.Message
	Record       formschema.Record
}

// Result is the merged record plus a short assistant acknowledgement of what
// changed this turn.
type Result struct {
	Record          formschema.Record
	Acknowledgement string
	// Updated lists the field names the model reported this turn, in the
	// order they were applied.
	Updated []string
}

// Failure marks a non-fatal extraction failure: the model call failed or its
// output was unusable. The record is guaranteed unchanged and the session may
// continue.
type Failure struct {
	Cause error
}

func (f *Failure) Error() string {
	return "extraction failed: " + f.Cause.Error()
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

type Extractor interface {
	Extract(ctx context.Context, req *Request) (*Result, error)
}
