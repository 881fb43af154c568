package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/spetersoncode/stepper/action"
	"github.com/spetersoncode/stepper/format"
	"github.com/spetersoncode/stepper/step"
)

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name    string
	version string
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// NewServer creates an MCP server exposing every action of the registry as
// a tool. Input schemas are derived from the actions' input examples.
func NewServer(registry *action.Registry, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{
		name:    "stepper-mcp-server",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)

	for _, typ := range registry.Types() {
		a, err := registry.Get(typ)
		if err != nil {
			continue
		}
		s.AddTool(ToolFromAction(a), actionHandler(a))
	}

	return s
}

// ToolFromAction describes an action as an MCP tool.
func ToolFromAction(a action.Action) mcp.Tool {
	return mcp.NewToolWithRawSchema(a.Type(), a.Description(), SchemaFromExample(a.InputExample()))
}

// SchemaFromExample derives an object schema whose properties have the JSON
// types of the example values.
func SchemaFromExample(example map[string]any) json.RawMessage {
	props := make(map[string]any, len(example))
	required := make([]string, 0, len(example))
	for name, v := range example {
		props[name] = map[string]any{"type": jsonType(v)}
		required = append(required, name)
	}
	sort.Strings(required)

	data, _ := json.Marshal(map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	})
	return data
}

func jsonType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "string"
	}
}

// actionHandler runs an action for an MCP call and renders its step.
func actionHandler(a action.Action) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		parsed := format.Parsed{Action: a.Type(), Params: req.GetArguments()}

		s, err := a.CreateStep(ctx, "", parsed)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if s == nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s returned no step", a.Type())), nil
		}

		switch st := s.State().(type) {
		case step.Failed:
			return mcp.NewToolResultError(st.Summary), nil
		case step.Succeeded:
			return mcp.NewToolResultText(renderSucceeded(st)), nil
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown step state %T", st)), nil
		}
	}
}

func renderSucceeded(st step.Succeeded) string {
	if !st.HasOutput() {
		return st.Summary
	}
	data, err := json.Marshal(st.Output)
	if err != nil {
		return st.Summary
	}
	parts := []string{st.Summary, string(data)}
	if st.Summary == "" {
		parts = parts[1:]
	}
	return strings.Join(parts, "\n")
}

// ServeStdio starts an MCP server that communicates over stdin/stdout.
// This is the standard transport for MCP servers invoked as subprocesses.
func ServeStdio(registry *action.Registry, opts ...ServerOption) error {
	s := NewServer(registry, opts...)
	return server.ServeStdio(s)
}
