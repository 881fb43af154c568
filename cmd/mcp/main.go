// Command mcp is a reference MCP server that exposes the demo actions over stdio.
//
// Any action registry can be served this way, allowing MCP clients (like
// Claude Desktop, or another stepper agent via STEPPER_MCP_COMMAND) to
// discover and use the actions.
//
// Usage:
//
//	go run ./cmd/mcp
//
// Configuration for Claude Desktop (~/Library/Application Support/Claude/claude_desktop_config.json):
//
//	{
//	    "mcpServers": {
//	        "stepper-actions": {
//	            "command": "go",
//	            "args": ["run", "./cmd/mcp"],
//	            "cwd": "/path/to/stepper"
//	        }
//	    }
//	}
package main

import (
	"log"

	"github.com/spetersoncode/stepper/action"
	"github.com/spetersoncode/stepper/internal/harness"
	"github.com/spetersoncode/stepper/mcp"
)

func main() {
	registry := action.NewRegistry(nil, harness.DemoActions()...)

	if err := mcp.ServeStdio(registry,
		mcp.WithName("stepper-mcp-example"),
		mcp.WithVersion("1.0.0"),
	); err != nil {
		log.Fatal(err)
	}
}
