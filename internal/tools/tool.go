package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool is the interface that all tools must implement.
type Tool interface {
	// Name returns the name of the tool.
	Name() string

	// Definition returns the MCP tool definition, including its input
	// schema.
	Definition() mcp.Tool

	// Call executes the tool with the given request. Operation failures
	// are reported inside the result payload; a non-nil error is reserved
	// for protocol-level problems.
	Call(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Caller dispatches a tool call by name. Implemented by Registry and by
// wrappers that add cross-cutting behavior around tool execution.
type Caller interface {
	Call(ctx context.Context, name string, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}
