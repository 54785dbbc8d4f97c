// Package httpapi exposes the session operations over HTTP for external
// hosts. The engine stays transport-agnostic; this package is plumbing only.
package httpapi

import (
	"context"

	"github.com/farhan32742/nexusform/formschema"
	"github.com/farhan32742/nexusform/session"
)

// SessionService is the slice of the engine the HTTP layer needs.
type SessionService interface {
	Start(ctx context.Context) (*session.Reply, error)
	SubmitUserTurn(ctx context.Context, id, text string) (*session.Reply, error)
	Approve(ctx context.Context, id string) (*session.Reply, error)
	Reject(ctx context.Context, id, correction string) (*session.Reply, error)
	Resume(ctx context.Context, id string) (*session.Reply, error)
	Status(ctx context.Context, id string) (*session.Reply, error)
	CurrentRecord(ctx context.Context, id string) (formschema.Record, error)
	Abandon(ctx context.Context, id string) (*session.Reply, error)
}
