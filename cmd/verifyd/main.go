// verifyd is the verification MCP server. It exposes the submit_verified_form
// tool over stdio and forwards approved form data to the backend HTTP API.
// The form agent only ever talks to the backend through this tool.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/farhan32742/nexusform/formschema"
	"github.com/farhan32742/nexusform/submit"
)

type submitArgs struct {
	FormData map[string]any `json:"form_data" jsonschema:"description=the approved form record to submit"`
}

type forwarder struct {
	url    string
	client *http.Client
}

// forward posts the record form-encoded, the content type the backend's
// submit endpoint declares.
func (f *forwarder) forward(ctx context.Context, data map[string]any) string {
	form := url.Values{}
	for key, value := range data {
		form.Set(key, formschema.Stringify(value))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Sprintf("%s %v", submit.ReplyUnreachablePrefix, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		slog.Warn("backend unreachable", "error", err)
		return fmt.Sprintf("%s %v", submit.ReplyUnreachablePrefix, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Warn("backend rejected submission", "status", resp.StatusCode)
		return fmt.Sprintf("%s backend returned %d: %s", submit.ReplyRejectedPrefix, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s: %s", key, formschema.Stringify(data[key])))
	}
	return fmt.Sprintf("%s Successfully recorded %d fields: [%s]", submit.ReplySuccessPrefix, len(data), strings.Join(pairs, ", "))
}

func main() {
	_ = godotenv.Load()

	// stdout belongs to the MCP transport; all logging goes to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	submitURL := os.Getenv("FORM_SUBMIT_URL")
	if submitURL == "" {
		slog.Error("FORM_SUBMIT_URL is not set")
		os.Exit(1)
	}

	fwd := &forwarder{
		url:    submitURL,
		client: &http.Client{Timeout: 15 * time.Second},
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "verification-server", Version: "1.0.0"}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        submit.SubmitToolName,
		Description: "Submit verified form data to the backend. Only called after human review approval.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args submitArgs) (*mcp.CallToolResult, any, error) {
		if len(args.FormData) == 0 {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: submit.ReplyRejectedPrefix + " received empty form data"}},
				IsError: true,
			}, nil, nil
		}
		reply := fwd.forward(ctx, args.FormData)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: reply}},
			IsError: !strings.HasPrefix(reply, submit.ReplySuccessPrefix),
		}, nil, nil
	})

	slog.Info("verification server listening on stdio", "backend", submitURL)
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
