// Package mcpclient connects to configured MCP servers over stdio and
// proxies their tools into the local registry. Remote tools are registered
// under the reserved mcp__<server>__<tool> namespace — the names the MCP
// usage tracker's predicate matches.
package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matiasleandrokruk/beacon/internal/domain/mcpusage"
	"github.com/matiasleandrokruk/beacon/internal/domain/tool"
	"github.com/matiasleandrokruk/beacon/internal/infra/config"
	"github.com/matiasleandrokruk/beacon/internal/version"
)

var ErrRemoteToolFailed = errors.New("mcp tool execution failed")

// ToolName builds the registry name for a remote tool.
func ToolName(server, remoteTool string) string {
	return mcpusage.ToolPrefix + server + "__" + remoteTool
}

// Manager owns the client sessions to all configured MCP servers.
type Manager struct {
	impl     *mcp.Implementation
	sessions []*mcp.ClientSession
}

func NewManager() *Manager {
	return &Manager{
		impl: &mcp.Implementation{Name: "beacond", Version: version.Version},
	}
}

// ConnectAll launches each configured server, discovers its tools, and
// registers them. A server that fails to connect aborts startup — a
// deployment that lists a server expects its tools to exist.
func (m *Manager) ConnectAll(ctx context.Context, servers []config.MCPServer, registry *tool.Registry) error {
	for _, srv := range servers {
		if err := m.connect(ctx, srv, registry); err != nil {
			return fmt.Errorf("mcp server %q: %w", srv.Name, err)
		}
	}
	return nil
}

func (m *Manager) connect(ctx context.Context, srv config.MCPServer, registry *tool.Registry) error {
	cmd := exec.Command(srv.Command, srv.Args...)
	transport := &mcp.CommandTransport{Command: cmd}

	client := mcp.NewClient(m.impl, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	m.sessions = append(m.sessions, session)

	listed, err := session.ListTools(ctx, nil)
	if err != nil {
		return fmt.Errorf("list tools: %w", err)
	}

	for _, remote := range listed.Tools {
		name := ToolName(srv.Name, remote.Name)
		executor := &remoteExecutor{session: session, toolName: remote.Name}
		if err := registry.Register(name, executor); err != nil {
			return fmt.Errorf("register %q: %w", name, err)
		}
	}

	return nil
}

// Close shuts down all client sessions.
func (m *Manager) Close() error {
	var errs []error
	for _, session := range m.sessions {
		if err := session.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.sessions = nil
	return errors.Join(errs...)
}

// remoteExecutor adapts one remote MCP tool to the local Executor contract.
type remoteExecutor struct {
	session  *mcp.ClientSession
	toolName string
}

func (e *remoteExecutor) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	args := map[string]any{}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &args); err != nil {
			return nil, fmt.Errorf("%w: params must be a json object", ErrRemoteToolFailed)
		}
	}

	result, err := e.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      e.toolName,
		Arguments: args,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteToolFailed, err)
	}

	return decodeResult(result)
}

// decodeResult converts a CallTool result into raw JSON. Structured content
// wins; otherwise text blocks are joined, passed through verbatim when they
// already form valid JSON, and wrapped as {"text": ...} when not.
func decodeResult(result *mcp.CallToolResult) (json.RawMessage, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: empty result", ErrRemoteToolFailed)
	}

	text := joinTextContent(result.Content)
	if result.IsError {
		return nil, fmt.Errorf("%w: %s", ErrRemoteToolFailed, text)
	}

	if result.StructuredContent != nil {
		raw, err := json.Marshal(result.StructuredContent)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal structured content: %v", ErrRemoteToolFailed, err)
		}
		return raw, nil
	}

	trimmed := strings.TrimSpace(text)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed), nil
	}

	raw, _ := json.Marshal(map[string]string{"text": text})
	return raw, nil
}

func joinTextContent(blocks []mcp.Content) string {
	var b strings.Builder
	for _, block := range blocks {
		if tc, ok := block.(*mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}
