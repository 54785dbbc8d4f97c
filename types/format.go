package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// PromptContext carries the shared context sections rendered into every
// model prompt: current record, target fields and outstanding issues.
type PromptContext struct {
	Record        any
	Fields        []FieldSummary
	Issues        []FieldIssue
	LastQuestion  string
	LastUserInput string
}

func formatFieldsSection(fields []FieldSummary) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Target fields:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Type", "Required", "Description")
	for _, field := range fields {
		required := "no"
		if field.Required {
			required = "yes"
		}
		desc := field.Description
		if desc == "" {
			desc = field.Label
		}
		_ = table.Append(field.Name, field.Type, required, desc)
	}
	_ = table.Render()
	return buf.String()
}

func formatIssuesSection(issues []FieldIssue) string {
	if len(issues) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Outstanding issues:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Issue", "Detail")
	for _, issue := range issues {
		_ = table.Append(issue.Field, string(issue.Kind), issue.Detail)
	}
	_ = table.Render()
	return buf.String()
}

// FormatPromptContext renders the context into the markdown layout the
// generators feed to the model as the user message.
func FormatPromptContext(pc *PromptContext) (string, error) {
	recordJSON, err := sonic.Marshal(pc.Record)
	if err != nil {
		return "", err
	}
	sections := []string{
		fmt.Sprintf("# Current Date: \n %s", time.Now().Format(time.RFC3339)),
		fmt.Sprintf("# Currently extracted data:\n```json\n%s\n```", string(recordJSON)),
	}
	if s := formatFieldsSection(pc.Fields); s != "" {
		sections = append(sections, s)
	}
	if pc.LastQuestion != "" || pc.LastUserInput != "" {
		sections = append(sections, "# Latest Dialogue:")
		if pc.LastQuestion != "" {
			sections = append(sections, fmt.Sprintf("## Assistant Question:\n%s", pc.LastQuestion))
		}
		if pc.LastUserInput != "" {
			sections = append(sections, fmt.Sprintf("## User Answer:\n%s", pc.LastUserInput))
		}
	}
	if s := formatIssuesSection(pc.Issues); s != "" {
		sections = append(sections, s)
	}
	return strings.Join(sections, "\n\n"), nil
}
