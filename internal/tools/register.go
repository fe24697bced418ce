package tools

import (
	"analytics-mcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolDefinition pairs an MCP tool with its handler.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// Register adds all Analytics tools to the MCP server.
func Register(s *server.MCPServer, inj *Injector) {
	defs := append(inj.AdminTools(), inj.ReportingTools()...)
	for _, def := range defs {
		s.AddTool(def.Tool, def.Handler)
	}
	logging.Info("Tools", "Registered %d Analytics tools", len(defs))
}
