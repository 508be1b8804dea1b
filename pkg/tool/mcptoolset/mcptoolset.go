// Package mcptoolset exposes an MCP stdio server's tools as agent tools.
//
// MCP (Model Context Protocol) servers are external subprocesses that
// expose callable operations over standard I/O. Connect launches the
// subprocess, performs the protocol handshake, and wraps each discovered
// tool as a langchaingo tools.Tool. The toolset owns the subprocess
// handle: Close terminates it and is safe to call repeatedly.
package mcptoolset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tmc/langchaingo/tools"
)

const protocolVersion = "2024-11-05"

// Config configures an MCP toolset.
type Config struct {
	// Name identifies this toolset in logs.
	Name string

	// Command is the launcher executable (e.g. "npx").
	Command string

	// Args are passed to the launcher.
	Args []string

	// Env is extra environment for the subprocess.
	Env map[string]string

	// Filter limits which discovered tools are exposed. Empty = all.
	Filter []string
}

// Toolset manages one stdio MCP server subprocess and its tools.
type Toolset struct {
	cfg       Config
	filterSet map[string]bool

	mu        sync.Mutex
	client    *client.Client
	toolsList []tools.Tool
	connected bool
}

// New creates an MCP toolset. The subprocess is not started until Connect.
func New(cfg Config) (*Toolset, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("command is required")
	}

	var filterSet map[string]bool
	if len(cfg.Filter) > 0 {
		filterSet = make(map[string]bool, len(cfg.Filter))
		for _, name := range cfg.Filter {
			filterSet[name] = true
		}
	}

	return &Toolset{cfg: cfg, filterSet: filterSet}, nil
}

// Name returns the toolset name.
func (t *Toolset) Name() string {
	return t.cfg.Name
}

// Connect launches the subprocess, initializes the MCP session, and
// discovers the server's tools. Connecting twice is an error. On any
// failure the subprocess is terminated before the error is returned.
func (t *Toolset) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.connected {
		return fmt.Errorf("toolset %s already connected", t.cfg.Name)
	}

	mcpClient, err := client.NewStdioMCPClient(t.cfg.Command, t.convertEnv(t.cfg.Env), t.cfg.Args...)
	if err != nil {
		return fmt.Errorf("failed to create MCP client: %w", err)
	}

	if err := mcpClient.Start(ctx); err != nil {
		mcpClient.Close()
		return fmt.Errorf("failed to start MCP client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "anisense",
		Version: "1.0.0",
	}
	initReq.Params.ProtocolVersion = protocolVersion

	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		mcpClient.Close()
		return fmt.Errorf("failed to initialize MCP: %w", err)
	}

	listResp, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		mcpClient.Close()
		return fmt.Errorf("failed to list tools: %w", err)
	}

	var wrapped []tools.Tool
	for _, mcpTool := range listResp.Tools {
		if t.filterSet != nil && !t.filterSet[mcpTool.Name] {
			continue
		}
		wrapped = append(wrapped, &remoteTool{
			toolset: t,
			name:    mcpTool.Name,
			desc:    describeTool(mcpTool),
		})
	}

	t.client = mcpClient
	t.toolsList = wrapped
	t.connected = true

	slog.Info("Connected to MCP server",
		"name", t.cfg.Name,
		"command", t.cfg.Command,
		"tools", len(wrapped),
	)
	return nil
}

// Tools returns the discovered tools. Empty before Connect.
func (t *Toolset) Tools() []tools.Tool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.toolsList
}

// Close terminates the subprocess. Idempotent: closing a never-connected
// or already-closed toolset is a no-op.
func (t *Toolset) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	t.toolsList = nil
	t.connected = false
	return err
}

func (t *Toolset) convertEnv(env map[string]string) []string {
	if env == nil {
		return nil
	}
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// describeTool renders the tool description plus its input schema so the
// model can produce well-formed JSON arguments.
func describeTool(mcpTool mcp.Tool) string {
	var b strings.Builder
	b.WriteString(mcpTool.Description)

	schema, err := json.Marshal(mcpTool.InputSchema)
	if err == nil && len(schema) > 2 {
		b.WriteString("\nInput must be a JSON object matching this schema: ")
		b.Write(schema)
	}
	return b.String()
}

// remoteTool adapts one MCP tool to the langchaingo tools.Tool interface.
type remoteTool struct {
	toolset *Toolset
	name    string
	desc    string
}

func (w *remoteTool) Name() string {
	return w.name
}

func (w *remoteTool) Description() string {
	return w.desc
}

// Call forwards the invocation to the subprocess. Input that parses as a
// JSON object is passed through as the argument map; anything else is
// wrapped as {"query": input}.
func (w *remoteTool) Call(ctx context.Context, input string) (string, error) {
	w.toolset.mu.Lock()
	mcpClient := w.toolset.client
	w.toolset.mu.Unlock()

	if mcpClient == nil {
		return "", fmt.Errorf("MCP toolset %s not connected", w.toolset.cfg.Name)
	}

	args := map[string]any{}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		args = map[string]any{"query": input}
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = w.name
	req.Params.Arguments = args

	resp, err := mcpClient.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("MCP call %s failed: %w", w.name, err)
	}

	text := extractText(resp)
	if resp.IsError {
		if text == "" {
			text = "unknown error"
		}
		return "", fmt.Errorf("MCP tool %s: %s", w.name, text)
	}
	return text, nil
}

// extractText concatenates the text content parts of a tool result.
func extractText(resp *mcp.CallToolResult) string {
	var texts []string
	for _, content := range resp.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			texts = append(texts, textContent.Text)
		}
	}
	return strings.Join(texts, "\n")
}

var _ tools.Tool = (*remoteTool)(nil)
