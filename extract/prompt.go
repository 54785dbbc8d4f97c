package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/farhan32742/nexusform/types"
)

const updateRecordToolName = "update_form_record"
const updateRecordToolDesc = "Report every form field value the user has explicitly stated. Omit fields the user never mentioned."

// DefaultExtractionSystemPrompt instructs the model to map user statements
// onto schema keys without inventing values, in any input language.
const DefaultExtractionSystemPrompt = `### ROLE
You are a high-precision data extraction agent for a form-filling system.
Your goal is to parse the user conversation and extract the fields defined in the target schema.

### RULES
- STRICT ADHERENCE: use only the keys listed under TARGET FIELDS.
- DATA TYPES: return values in the declared type (a number field gets a number, not a string).
- NO HALLUCINATION: never guess or invent values. If the user never stated a field, omit it entirely.
- UPDATES: if a field already has a value and the user provides a correction, report the new value.
- MULTILINGUAL: the user may write in any language or transliteration (e.g. "Mera naam Ali hai" -> full_name: "Ali"). Extract regardless of language.
- IDENTIFIERS: copy digits of IDs and codes exactly as stated.

Report the result by calling the '%s' tool.`

func buildExtractionPrompt(ctx context.Context, req *Request) ([]*schema.Message, error) {
	system := fmt.Sprintf(DefaultExtractionSystemPrompt, updateRecordToolName)
	system += fmt.Sprintf("\n\nTARGET FIELDS: %s", strings.Join(req.Schema.FieldNames(), ", "))

	contextSection, err := types.FormatPromptContext(&types.PromptContext{
		Record: req.Record,
		Fields: req.Schema.Summaries(),
	})
	if err != nil {
		return nil, fmt.Errorf("format prompt context: %w", err)
	}

	messages := make([]*schema.Message, 0, len(req.Conversation)+2)
	messages = append(messages, schema.SystemMessage(system))
	for _, msg := range req.Conversation {
		if msg == nil || msg.Role == schema.System {
			continue
		}
		messages = append(messages, msg)
	}
	messages = append(messages, schema.UserMessage(contextSection))
	return messages, nil
}
