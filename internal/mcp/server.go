package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/histofy/histofy/internal/config"
	"github.com/histofy/histofy/internal/journal"
	"github.com/histofy/histofy/internal/workflow"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"journal_add": {
		def:     addToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAdd },
	},
	"journal_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"journal_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"journal_edit": {
		def:     editToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEdit },
	},
	"journal_favorite": {
		def:     favoriteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFavorite },
	},
	"journal_remove": {
		def:     removeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRemove },
	},
	"journal_recent": {
		def:     recentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecent },
	},
	"site_identify": {
		def:     identifyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIdentify },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with Histofy tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(jc *journal.Collection, coord *workflow.Coordinator, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"histofy",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(jc, coord, cfg)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(jc *journal.Collection, coord *workflow.Coordinator, cfg *config.Config, version string) error {
	s := NewServer(jc, coord, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
