package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"github.com/farhan32742/nexusform/formschema"
	"github.com/farhan32742/nexusform/patch"
	"github.com/farhan32742/nexusform/structured"
)

// ToolBasedExtractor runs the extraction through a forced tool call whose
// parameter schema is built at runtime from the session's form definition.
type ToolBasedExtractor struct {
	chatModel model.ToolCallingChatModel
}

func NewToolBasedExtractor(chatModel model.ToolCallingChatModel) *ToolBasedExtractor {
	return &ToolBasedExtractor{chatModel: chatModel}
}

func (e *ToolBasedExtractor) Extract(ctx context.Context, req *Request) (*Result, error) {
	toolInfo := req.Schema.ToolInfo(updateRecordToolName, updateRecordToolDesc)
	chain := structured.NewChainWithToolInfo[*Request, map[string]any](
		e.chatModel,
		buildExtractionPrompt,
		toolInfo,
	)

	raw, err := chain.Invoke(ctx, req)
	if err != nil {
		return &Result{Record: req.Record}, &Failure{Cause: err}
	}

	extracted := req.Schema.Coerce(*raw)
	slog.Debug("extracted fields", "count", len(extracted), "fields", fieldNames(extracted))
	return Merge(req.Schema, req.Record, extracted)
}

// Merge applies extracted field values onto current as RFC6902 operations.
// Fields absent from extracted stay untouched; a repeated field takes the new
// value. The merged record is re-coerced so value types stay canonical after
// the JSON round trip.
func Merge(def *formschema.Definition, current formschema.Record, extracted formschema.Record) (*Result, error) {
	if len(extracted) == 0 {
		return &Result{
			Record:          current,
			Acknowledgement: "I could not find any new form details in that message.",
		}, nil
	}

	ops := patch.SetOps(extracted)
	merged, err := patch.Apply(current, ops)
	if err != nil {
		return &Result{Record: current}, &Failure{Cause: err}
	}
	merged = def.Coerce(merged)

	updated := fieldNames(extracted)
	pairs := make([]string, 0, len(updated))
	for _, name := range updated {
		pairs = append(pairs, fmt.Sprintf("%s: %s", name, formschema.Stringify(merged[name])))
	}
	return &Result{
		Record:          merged,
		Acknowledgement: "I've updated the info: " + strings.Join(pairs, ", "),
		Updated:         updated,
	}, nil
}

func fieldNames(record formschema.Record) []string {
	names := make([]string, 0, len(record))
	for name := range record {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
