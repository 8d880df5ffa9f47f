// Package mcp exposes workout import and history to AI assistants over the
// Model Context Protocol.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("TrackMate", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("TrackMate workout tracker. Call get_format_prompt for the JSON layout, preview_workout to check a generated workout, then import_workout to save it as a template. list_templates and get_history show saved workouts and completed sessions."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetFormatPrompt, Handler: h.getFormatPrompt},
		server.ServerTool{Tool: toolPreviewWorkout, Handler: h.previewWorkout},
		server.ServerTool{Tool: toolImportWorkout, Handler: h.importWorkout},
		server.ServerTool{Tool: toolListTemplates, Handler: h.listTemplates},
		server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentHistory, Handler: h.recentHistory},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resRecentHistory = mcp.NewResource(
	"trackmate://recent_history",
	"Recent History",
	mcp.WithResourceDescription("The 10 most recent completed workout sessions with exercise and set counts"),
	mcp.WithMIMEType("application/json"),
)
