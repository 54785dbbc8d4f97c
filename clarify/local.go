package clarify

import (
	"context"
	"fmt"
	"strings"

	"github.com/farhan32742/nexusform/types"
)

// LocalClarifier renders a deterministic question without a model call. It is
// the tail of the fallback chain, so a model outage never leaves the user
// without a prompt.
type LocalClarifier struct{}

func (g LocalClarifier) Clarify(ctx context.Context, req *Request) (string, error) {
	if len(req.Issues) == 0 {
		return "Please continue filling in the form.", nil
	}
	var missing, invalid []string
	for _, issue := range req.Issues {
		label := issue.Label
		if label == "" {
			label = issue.Field
		}
		if issue.Kind == types.IssueMissing {
			missing = append(missing, label)
		} else {
			invalid = append(invalid, label)
		}
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("I still need: %s", strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		parts = append(parts, fmt.Sprintf("these look invalid and need correcting: %s", strings.Join(invalid, ", ")))
	}
	return strings.Join(parts, "; ") + ".", nil
}

// FailbackClarifier tries each generator in order and returns the first
// answer.
type FailbackClarifier struct {
	generators []Generator
}

func NewFailbackClarifier(generators ...Generator) *FailbackClarifier {
	return &FailbackClarifier{generators: generators}
}

func (g *FailbackClarifier) Clarify(ctx context.Context, req *Request) (string, error) {
	var lastErr error
	for _, generator := range g.generators {
		question, err := generator.Clarify(ctx, req)
		if err == nil {
			return question, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("all clarifiers failed: %w", lastErr)
}
