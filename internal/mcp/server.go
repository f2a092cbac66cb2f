package mcp

import (
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tripline/server/internal/mcp/prompts"
	"github.com/tripline/server/internal/mcp/resources"
	"github.com/tripline/server/internal/mcp/tools"
)

// Server exposes the date context resolver as MCP tools, resources and prompts.
type Server struct {
	mcp       *mcpserver.MCPServer
	tools     *tools.DateContextTools
	resources *resources.SchemaResources
	prompts   *prompts.PromptTemplates
}

// Config holds configuration for the MCP server.
type Config struct {
	Name      string
	Version   string
	Transport string
	Timezone  string
}

// NewServer registers resolve_date_context, the info and config resources and
// the scope_trip_search prompt.
func NewServer(cfg Config, resolver tools.Resolver) *Server {
	mcpServer := mcpserver.NewMCPServer(
		cfg.Name,
		cfg.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions("Resolve the date range a chat message refers to before querying trip history. Dates are interpreted in "+cfg.Timezone+"."),
	)

	srv := &Server{
		mcp:   mcpServer,
		tools: tools.NewDateContextTools(resolver),
		resources: resources.NewSchemaResources(resources.ServerInfo{
			Name:         cfg.Name,
			Version:      cfg.Version,
			Capabilities: resources.ServerCapabilities{Tools: true, Resources: true, Prompts: true},
			Transport:    cfg.Transport,
		}, cfg.Timezone),
		prompts: prompts.NewPromptTemplates(cfg.Timezone),
	}

	mcpServer.AddTool(srv.tools.ResolveDateContextTool(), srv.tools.ResolveDateContextHandler)
	mcpServer.AddResource(srv.resources.InfoResource(), srv.resources.InfoReadHandler())
	mcpServer.AddResource(srv.resources.ConfigResource(), srv.resources.ConfigReadHandler())
	mcpServer.AddPrompt(srv.prompts.ScopeTripSearchPrompt(), srv.prompts.ScopeTripSearchHandler)

	return srv
}

// MCPServer returns the underlying MCP server for use with transports.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}
