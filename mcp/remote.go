package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spetersoncode/stepper/action"
)

// Remote provides access to the tools of an MCP server as actions.
//
// Remote is safe for concurrent use. The tool list is cached locally and can
// be refreshed with [Remote.Refresh].
type Remote struct {
	client *client.Client
	mu     sync.RWMutex
	tools  []mcp.Tool
}

// Connect starts an MCP server subprocess and connects to it via stdio.
// The command is the path to the MCP server executable, and args are passed to it.
func Connect(ctx context.Context, command string, env []string, args ...string) (*Remote, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}

	return NewRemoteFromClient(ctx, c)
}

// ConnectSSE connects to an MCP server via SSE.
func ConnectSSE(ctx context.Context, baseURL string) (*Remote, error) {
	c, err := client.NewSSEMCPClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSE MCP client: %w", err)
	}

	return NewRemoteFromClient(ctx, c)
}

// NewRemoteFromClient starts and initializes an existing MCP client and
// fetches its tools.
func NewRemoteFromClient(ctx context.Context, c *client.Client) (*Remote, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP client: %w", err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "stepper-mcp-client",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	r := &Remote{client: c}
	if err := r.Refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	return r, nil
}

// Close closes the connection to the MCP server.
func (r *Remote) Close() error {
	return r.client.Close()
}

// Refresh fetches the current list of tools from the MCP server.
// Actions obtained before a refresh keep calling the server by name.
func (r *Remote) Refresh(ctx context.Context) error {
	result, err := r.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools = append([]mcp.Tool(nil), result.Tools...)
	return nil
}

// Actions returns one action per remote tool, in server order.
func (r *Remote) Actions() []action.Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actions := make([]action.Action, len(r.tools))
	for i, t := range r.tools {
		actions[i] = NewAction(r.client, t)
	}
	return actions
}

// Names returns the names of all available tools.
func (r *Remote) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name
	}
	return names
}

// Len returns the number of available tools.
func (r *Remote) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
