package structured

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type cannedChatModel struct {
	response *schema.Message
	err      error
	lastIn   []*schema.Message
}

func (m *cannedChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.lastIn = input
	return m.response, m.err
}

func (m *cannedChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not streamed")
}

func (m *cannedChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

type cityAnswer struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

func echoPrompt(ctx context.Context, input string) ([]*schema.Message, error) {
	return []*schema.Message{schema.UserMessage(input)}, nil
}

func TestChainInvokeDecodesToolCall(t *testing.T) {
	t.Parallel()
	cm := &cannedChatModel{
		response: schema.AssistantMessage("", []schema.ToolCall{
			{Function: schema.FunctionCall{Name: "pick_city", Arguments: `{"city": "Istanbul", "country": "Turkey"}`}},
		}),
	}
	chain, err := NewChain[string, cityAnswer](cm, echoPrompt, "pick_city", "Pick a destination city.")
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}

	out, err := chain.Invoke(context.Background(), "where should I go?")
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if out.City != "Istanbul" || out.Country != "Turkey" {
		t.Errorf("decoded = %+v", out)
	}
	if len(cm.lastIn) != 1 || cm.lastIn[0].Content != "where should I go?" {
		t.Errorf("prompt not passed through: %+v", cm.lastIn)
	}
	if chain.GetToolInfo().Name != "pick_city" {
		t.Errorf("tool name = %q", chain.GetToolInfo().Name)
	}
}

func TestChainInvokeNoToolCall(t *testing.T) {
	t.Parallel()
	cm := &cannedChatModel{response: schema.AssistantMessage("plain text", nil)}
	chain := NewChainWithToolInfo[string, cityAnswer](cm, echoPrompt, &schema.ToolInfo{Name: "pick_city"})

	if _, err := chain.Invoke(context.Background(), "hi"); err == nil {
		t.Fatal("a response without a tool call must fail")
	}
}

func TestChainInvokeModelError(t *testing.T) {
	t.Parallel()
	cm := &cannedChatModel{err: errors.New("rate limited")}
	chain := NewChainWithToolInfo[string, cityAnswer](cm, echoPrompt, &schema.ToolInfo{Name: "pick_city"})

	if _, err := chain.Invoke(context.Background(), "hi"); err == nil {
		t.Fatal("model errors must propagate")
	}
}

func TestChainInvokeBadArguments(t *testing.T) {
	t.Parallel()
	cm := &cannedChatModel{
		response: schema.AssistantMessage("", []schema.ToolCall{
			{Function: schema.FunctionCall{Name: "pick_city", Arguments: `{"city":`}},
		}),
	}
	chain := NewChainWithToolInfo[string, cityAnswer](cm, echoPrompt, &schema.ToolInfo{Name: "pick_city"})

	if _, err := chain.Invoke(context.Background(), "hi"); err == nil {
		t.Fatal("malformed arguments must fail")
	}
}
