// Package review interprets what a user says at the review gate. The session
// engine only accepts explicit approve/reject actions there; hosts use a
// Parser to map free text onto one of them.
package review

import "context"

type Decision string

const (
	// Approve releases the record to the submitter.
	Approve Decision = "approve"
	// Reject treats the text as a correction and re-enters extraction.
	Reject Decision = "reject"
	// Unclear means the text carries no usable decision; the host should
	// prompt again.
	Unclear Decision = "unclear"
)

type Parser interface {
	ParseDecision(ctx context.Context, text string) (Decision, error)
}
