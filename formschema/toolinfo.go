package formschema

import (
	"fmt"

	"github.com/cloudwego/eino/schema"
)

// ToolInfo builds the tool definition the extractor forces the model to call.
// Every parameter is optional: the model must only report fields the user
// actually stated, so nothing is required at the tool level.
func (d *Definition) ToolInfo(name, desc string) *schema.ToolInfo {
	params := make(map[string]*schema.ParameterInfo, len(d.Fields))
	for _, field := range d.Fields {
		info := &schema.ParameterInfo{
			Type: dataType(field.Type),
			Desc: fieldDesc(field),
		}
		params[field.Name] = info
	}
	return &schema.ToolInfo{
		Name:        name,
		Desc:        desc,
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}
}

func dataType(t FieldType) schema.DataType {
	switch t {
	case TypeInteger:
		return schema.Integer
	case TypeNumber:
		return schema.Number
	default:
		return schema.String
	}
}

func fieldDesc(field FieldDescriptor) string {
	desc := field.Description
	if desc == "" {
		desc = field.Label
	}
	if field.Pattern != "" {
		desc = fmt.Sprintf("%s (format: %s)", desc, field.Pattern)
	}
	return desc
}
