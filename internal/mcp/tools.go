package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/trackmate/internal/ingest"
	"github.com/mark3labs/mcp-go/mcp"
)

const recentHistoryLimit = 10

// --- Tool definitions ---

var toolGetFormatPrompt = mcp.NewTool("get_format_prompt",
	mcp.WithDescription("Return the instruction text that asks an assistant to produce a workout in the JSON layout TrackMate imports."),
)

var toolPreviewWorkout = mcp.NewTool("preview_workout",
	mcp.WithDescription("Parse workout JSON without saving it. Returns the workout name and the exercises with sets and rep targets after defaults are applied."),
	mcp.WithString("text", mcp.Required(), mcp.Description(`Workout JSON, e.g. {"Push Day": {"Bench Press": {"sets": 4, "reps": "6-8"}}}`)),
)

var toolImportWorkout = mcp.NewTool("import_workout",
	mcp.WithDescription("Parse workout JSON and save it as a reusable template. A tracking session for it is started on the server."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Workout JSON in the get_format_prompt layout")),
)

var toolListTemplates = mcp.NewTool("list_templates",
	mcp.WithDescription("List saved workout templates in the order they were imported."),
)

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("List completed workout sessions, newest first, with completed exercise and set counts."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sessions to return. Defaults to all.")),
)

// --- Tool handlers ---

func (h *handlers) getFormatPrompt(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ingest.FormatPrompt()), nil
}

func (h *handlers) previewWorkout(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	c, err := ingest.ParseAndValidate(ingest.Normalize(text))
	if err != nil {
		return parseError(err), nil
	}

	result, err := mcp.NewToolResultJSON(c)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) importWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	w, err := h.ds.ImportWorkout(ctx, text)
	if err != nil {
		if ingest.IsImportError(err) {
			return parseError(err), nil
		}
		h.log.Error("mcp import_workout", "error", err)
		return mcp.NewToolResultError("import failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listTemplates(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := h.ds.ListTemplates(ctx)
	if err != nil {
		h.log.Error("mcp list_templates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(templates)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history, err := h.ds.ListHistory(ctx)
	if err != nil {
		h.log.Error("mcp get_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if limit := req.GetInt("limit", 0); limit > 0 && limit < len(history) {
		history = history[:limit]
	}

	result, err := mcp.NewToolResultJSON(history)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Resource handlers ---

func (h *handlers) recentHistory(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	history, err := h.ds.ListHistory(ctx)
	if err != nil {
		return nil, err
	}
	if len(history) > recentHistoryLimit {
		history = history[:recentHistoryLimit]
	}

	data, err := json.Marshal(history)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// parseError reports a parser failure with the same wording the web
// frontend shows.
func parseError(err error) *mcp.CallToolResult {
	title, desc := ingest.UserMessage(err)
	return mcp.NewToolResultError(title + ": " + desc)
}
