package formschema

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Source supplies the form schema for a session. It is invoked at most once
// per session; the result is cached in the session state.
type Source interface {
	Fetch(ctx context.Context) (*Definition, error)
}

// DefaultSubmitBodySchema is the OpenAPI component the backend publishes its
// submission body under.
const DefaultSubmitBodySchema = "Body_handle_form_submit_post"

// HTTPSource fetches the schema from the backend's metadata endpoint. The
// endpoint may return either a plain {"fields": [...]} document or a full
// OpenAPI document describing the submission body.
type HTTPSource struct {
	url        string
	schemaName string
	client     *http.Client
}

func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{
		url:        url,
		schemaName: DefaultSubmitBodySchema,
		client:     client,
	}
}

// WithSchemaName overrides the OpenAPI component name to look for.
func (s *HTTPSource) WithSchemaName(name string) *HTTPSource {
	s.schemaName = name
	return s
}

func (s *HTTPSource) Fetch(ctx context.Context) (*Definition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build schema request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch form schema: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch form schema: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read schema response: %w", err)
	}
	return ParseDocument(body, s.schemaName)
}

// ParseDocument extracts field descriptors from a schema document and builds
// the Definition. A top-level "fields" list wins; otherwise the named OpenAPI
// component is parsed.
func ParseDocument(doc []byte, schemaName string) (*Definition, error) {
	var direct struct {
		Fields []FieldDescriptor `json:"fields"`
	}
	if err := json.Unmarshal(doc, &direct); err == nil && len(direct.Fields) > 0 {
		return Build(direct.Fields)
	}
	fields, err := parseOpenAPI(doc, schemaName)
	if err != nil {
		return nil, err
	}
	return Build(fields)
}

type openAPIProperty struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Pattern     string `json:"pattern"`
	Format      string `json:"format"`
	Description string `json:"description"`
}

type openAPISchema struct {
	Properties *orderedmap.OrderedMap[string, openAPIProperty] `json:"properties"`
	Required   []string                                        `json:"required"`
}

type openAPIDocument struct {
	Components struct {
		Schemas map[string]json.RawMessage `json:"schemas"`
	} `json:"components"`
}

// parseOpenAPI walks components.schemas.<name>, preserving the property order
// of the document so downstream issue ordering stays stable.
func parseOpenAPI(doc []byte, schemaName string) ([]FieldDescriptor, error) {
	var parsed openAPIDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("not a schema document: %v", err)}
	}
	raw, ok := parsed.Components.Schemas[schemaName]
	if !ok {
		return nil, &SchemaError{Reason: fmt.Sprintf("component schema %q not found", schemaName)}
	}
	var body openAPISchema
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("component schema %q: %v", schemaName, err)}
	}
	if body.Properties == nil || body.Properties.Len() == 0 {
		return nil, &SchemaError{Reason: fmt.Sprintf("component schema %q has no properties", schemaName)}
	}
	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}
	fields := make([]FieldDescriptor, 0, body.Properties.Len())
	for pair := body.Properties.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value
		pattern := prop.Pattern
		if pattern == "" {
			pattern = prop.Format
		}
		fields = append(fields, FieldDescriptor{
			Name:        pair.Key,
			Type:        FieldType(prop.Type),
			Required:    required[pair.Key],
			Pattern:     pattern,
			Label:       prop.Title,
			Description: prop.Description,
		})
	}
	return fields, nil
}

// StaticSource returns a fixed schema, mostly for tests and local harnesses.
type StaticSource struct {
	Definition *Definition
}

func (s StaticSource) Fetch(ctx context.Context) (*Definition, error) {
	if s.Definition == nil {
		return nil, &SchemaError{Reason: "no static schema configured"}
	}
	return s.Definition, nil
}
