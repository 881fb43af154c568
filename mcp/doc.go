// Package mcp connects agent actions with MCP (Model Context Protocol) servers.
//
// MCP is a protocol that enables AI assistants to access external tools and
// data. This package provides bidirectional integration:
//
//   - Client: connect to an MCP server with [Connect] and use its tools as
//     actions through [Remote.Actions].
//   - Server: expose an [action.Registry] as an MCP server with [NewServer],
//     allowing MCP clients to discover and call the actions.
//
// # Consuming MCP Servers
//
//	remote, err := mcp.Connect(ctx, "./my-mcp-server", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer remote.Close()
//
//	registry := action.NewRegistry(nil, action.Done()).Add(remote.Actions()...)
//
// # Exposing Actions as an MCP Server
//
//	registry := action.NewRegistry(nil, searchAction)
//	if err := mcp.ServeStdio(registry); err != nil {
//	    log.Fatal(err)
//	}
package mcp
