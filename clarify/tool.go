package clarify

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// DefaultClarifySystemPromptTemplate asks the model to request corrections in
// a friendly, concise way. The "%s" placeholder receives the issue list.
const DefaultClarifySystemPromptTemplate = `You are a professional form-filling assistant. The following fields are either missing or have invalid formats. Ask the user to provide or correct them in a friendly, concise way. Cover every issue in one message; do not send one question per field.

Issues found: %s`

type ToolBasedClarifier struct {
	systemPromptTemplate string
	chatModel            model.ToolCallingChatModel
}

type clarifierOptions struct {
	systemPromptTemplate string
}

type Option func(*clarifierOptions)

// WithSystemPromptTemplate overrides the clarification prompt. The template
// must keep a single "%s" placeholder for the issue list.
func WithSystemPromptTemplate(tpl string) Option {
	return func(o *clarifierOptions) {
		o.systemPromptTemplate = tpl
	}
}

func NewToolBasedClarifier(chatModel model.ToolCallingChatModel, opts ...Option) *ToolBasedClarifier {
	options := clarifierOptions{
		systemPromptTemplate: DefaultClarifySystemPromptTemplate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return &ToolBasedClarifier{
		systemPromptTemplate: options.systemPromptTemplate,
		chatModel:            chatModel,
	}
}

func (g *ToolBasedClarifier) Clarify(ctx context.Context, req *Request) (string, error) {
	issues := make([]string, 0, len(req.Issues))
	for _, issue := range req.Issues {
		issues = append(issues, issue.String())
	}
	system := fmt.Sprintf(g.systemPromptTemplate, strings.Join(issues, ", "))

	messages := make([]*schema.Message, 0, len(req.Conversation)+1)
	messages = append(messages, schema.SystemMessage(system))
	for _, msg := range req.Conversation {
		if msg == nil || msg.Role == schema.System {
			continue
		}
		messages = append(messages, msg)
	}

	response, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return response.Content, nil
}
