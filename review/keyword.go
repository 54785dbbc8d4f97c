package review

import (
	"context"
	"fmt"
	"strings"
)

// KeywordParser resolves the decision from literal keywords. At the review
// gate any non-approval text is a correction, so unmatched input maps to
// Reject rather than Unclear.
type KeywordParser struct {
	ApproveKeywords []string
}

func NewKeywordParser() *KeywordParser {
	return &KeywordParser{
		ApproveKeywords: []string{"yes", "ok", "okay", "yup", "approve", "approved", "correct", "confirm", "submit"},
	}
}

func (p *KeywordParser) ParseDecision(ctx context.Context, text string) (Decision, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Unclear, nil
	}
	for _, keyword := range p.ApproveKeywords {
		if normalized == keyword {
			return Approve, nil
		}
	}
	return Reject, nil
}

// FailbackParser tries each parser in order and keeps the first answer that
// is not an error.
type FailbackParser struct {
	parsers []Parser
}

func NewFailbackParser(parsers ...Parser) *FailbackParser {
	return &FailbackParser{parsers: parsers}
}

func (p *FailbackParser) ParseDecision(ctx context.Context, text string) (Decision, error) {
	var lastErr error
	for _, parser := range p.parsers {
		decision, err := parser.ParseDecision(ctx, text)
		if err == nil {
			return decision, nil
		}
		lastErr = err
	}
	return Unclear, fmt.Errorf("all decision parsers failed: %w", lastErr)
}
