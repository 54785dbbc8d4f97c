package review

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/farhan32742/nexusform/structured"
)

const (
	parseDecisionToolName        = "parse_review_decision"
	parseDecisionToolDescription = "Determine the user's decision about the record shown for review: approve, reject, unclear."
)

type parseDecisionOutput struct {
	Decision Decision `json:"decision" jsonschema:"required,enum=approve,enum=reject,enum=unclear,description=The user's review decision"`
}

// ToolBasedParser asks the model to classify the review response. Useful when
// approvals arrive in free prose ("looks good, go ahead") that the keyword
// parser would misread as a correction.
type ToolBasedParser struct {
	chain *structured.Chain[string, parseDecisionOutput]
}

func NewToolBasedParser(chatModel model.ToolCallingChatModel) (*ToolBasedParser, error) {
	chain, err := structured.NewChain[string, parseDecisionOutput](
		chatModel,
		buildParseDecisionPrompt,
		parseDecisionToolName,
		parseDecisionToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedParser{chain: chain}, nil
}

func (p *ToolBasedParser) ParseDecision(ctx context.Context, text string) (Decision, error) {
	result, err := p.chain.Invoke(ctx, text)
	if err != nil {
		return Unclear, err
	}
	if result == nil || result.Decision == "" {
		return Unclear, fmt.Errorf("empty decision returned by %s", parseDecisionToolName)
	}
	return result.Decision, nil
}

func buildParseDecisionPrompt(ctx context.Context, text string) ([]*schema.Message, error) {
	systemPrompt := fmt.Sprintf(`The user was shown their completed form record and asked whether it is correct.

Classify their reply:
- approve: the user explicitly confirms the record is correct and should be submitted (e.g. "yes", "looks good", "go ahead").
- reject: the user points out something to change, supplies a different value, or declines to submit.
- unclear: the reply carries no decision about the record at all.

Call the '%s' tool with the result.`, parseDecisionToolName)

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(text),
	}, nil
}
