package media

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/XiaoConstantine/mcp-go/pkg/client"
	mcplogging "github.com/XiaoConstantine/mcp-go/pkg/logging"
	models "github.com/XiaoConstantine/mcp-go/pkg/model"
	"github.com/XiaoConstantine/mcp-go/pkg/transport"

	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// toolCaller is the slice of the MCP client the searcher needs. *client.Client
// satisfies it; tests substitute a scripted implementation.
type toolCaller interface {
	CallTool(ctx context.Context, name string, arguments map[string]interface{}) (*models.CallToolResult, error)
}

// MCPSearcher delegates media search to a named tool on an MCP server. The
// tool returns the candidate list as a JSON text block.
type MCPSearcher struct {
	caller   toolCaller
	toolName string
}

// NewMCPSearcher creates a searcher over an initialized MCP client.
func NewMCPSearcher(caller *client.Client, toolName string) (*MCPSearcher, error) {
	return newMCPSearcher(caller, toolName)
}

func newMCPSearcher(caller toolCaller, toolName string) (*MCPSearcher, error) {
	if caller == nil {
		return nil, errors.New(errors.ConfigurationError, "MCP client is required")
	}
	if toolName == "" {
		return nil, errors.New(errors.ConfigurationError, "MCP tool name is required")
	}
	return &MCPSearcher{caller: caller, toolName: toolName}, nil
}

// NewMCPClientFromStdio creates and initializes an MCP client over the given
// stdio pipes, for servers launched as subprocesses.
func NewMCPClientFromStdio(reader io.Reader, writer io.Writer) (*client.Client, error) {
	logger := mcplogging.NewStdLogger(mcplogging.InfoLevel)
	t := transport.NewStdioTransport(reader, writer, logger)

	mcpClient := client.NewClient(t,
		client.WithLogger(logger),
		client.WithClientInfo("lexgo", "0.1.0"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := mcpClient.Initialize(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ConfigurationError, "failed to initialize MCP client")
	}
	return mcpClient, nil
}

// Search implements Searcher.
func (m *MCPSearcher) Search(ctx context.Context, word string, limit int) ([]core.MediaCandidate, error) {
	args := map[string]interface{}{"keyword": word}
	if limit > 0 {
		args["limit"] = limit
	}

	result, err := m.caller.CallTool(ctx, m.toolName, args)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.TaskFailed, "MCP tool call failed"),
			errors.Fields{"tool": m.toolName, "word": word})
	}
	if result.IsError {
		return nil, errors.WithFields(
			errors.New(errors.TaskFailed, "MCP tool reported an error"),
			errors.Fields{"tool": m.toolName, "word": word})
	}

	text := extractContentText(result.Content)
	if text == "" {
		return nil, errors.New(errors.InvalidResponse, "MCP tool returned no text content")
	}

	candidates, err := decodeCandidates(text)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// decodeCandidates accepts either a bare JSON array or an object wrapping a
// "candidates" array, since MCP servers differ on envelope conventions.
func decodeCandidates(text string) ([]core.MediaCandidate, error) {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "[") {
		var list []core.MediaCandidate
		if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
			return nil, errors.Wrap(err, errors.InvalidResponse, "malformed MCP candidate list")
		}
		return list, nil
	}

	var wrapped struct {
		Candidates []core.MediaCandidate `json:"candidates"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapped); err != nil {
		return nil, errors.Wrap(err, errors.InvalidResponse, "malformed MCP candidate payload")
	}
	return wrapped.Candidates, nil
}

// extractContentText concatenates the text blocks of an MCP result.
func extractContentText(content []models.Content) string {
	var b strings.Builder
	for _, item := range content {
		if textContent, ok := item.(models.TextContent); ok {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(textContent.Text)
		}
	}
	return b.String()
}
