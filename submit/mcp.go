package submit

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/farhan32742/nexusform/formschema"
	"github.com/farhan32742/nexusform/types"
)

// SubmitToolName is the tool the verification server exposes.
const SubmitToolName = "submit_verified_form"

// MCPSubmitter sends records to the verification server over an MCP session.
// The session is constructed once per process and shared across form
// sessions; calls are serialized by the underlying transport.
type MCPSubmitter struct {
	session  *mcp.ClientSession
	toolName string
}

// NewMCPSubmitter spawns the verification server command and connects to it
// over stdio.
func NewMCPSubmitter(ctx context.Context, command string, args ...string) (*MCPSubmitter, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: "nexusform", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &mcp.CommandTransport{Command: exec.Command(command, args...)}, nil)
	if err != nil {
		return nil, fmt.Errorf("connect verification server: %w", err)
	}
	return NewMCPSubmitterFromSession(session), nil
}

// NewMCPSubmitterFromSession wraps an already connected session; used with
// in-memory transports in tests.
func NewMCPSubmitterFromSession(session *mcp.ClientSession) *MCPSubmitter {
	return &MCPSubmitter{session: session, toolName: SubmitToolName}
}

func (s *MCPSubmitter) Submit(ctx context.Context, record formschema.Record) (*Outcome, error) {
	slog.Info("submitting record", "tool", s.toolName, "fields", len(record))
	result, err := s.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      s.toolName,
		Arguments: map[string]any{"form_data": map[string]any(record)},
	})
	if err != nil {
		slog.Warn("verification server unreachable", "error", err)
		return &Outcome{
			Tag:     types.OutcomeTransportError,
			Message: fmt.Sprintf("The submission service is unreachable: %v", err),
		}, nil
	}
	return ParseReply(resultText(result), result.IsError), nil
}

func (s *MCPSubmitter) Close() error {
	return s.session.Close()
}

func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	if len(parts) == 0 {
		return "No response content"
	}
	return strings.Join(parts, "\n")
}
