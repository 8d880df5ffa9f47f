package mcp

import (
	"context"

	"github.com/claude/trackmate/internal/app"
	"github.com/claude/trackmate/internal/models"
)

// DataSource abstracts where workouts live for MCP tools. Both Local (an
// in-process controller) and HTTPClient (remote via REST API) satisfy it.
type DataSource interface {
	ImportWorkout(ctx context.Context, text string) (models.Workout, error)
	ListTemplates(ctx context.Context) ([]models.Workout, error)
	ListHistory(ctx context.Context) ([]models.SessionSummary, error)
}

// Local serves MCP tools from the controller running in this process.
type Local struct {
	App *app.App
}

// Compile-time checks.
var (
	_ DataSource = Local{}
	_ DataSource = (*HTTPClient)(nil)
)

func (l Local) ImportWorkout(ctx context.Context, text string) (models.Workout, error) {
	return l.App.ImportText(ctx, text)
}

func (l Local) ListTemplates(context.Context) ([]models.Workout, error) {
	return l.App.Templates(), nil
}

func (l Local) ListHistory(context.Context) ([]models.SessionSummary, error) {
	return l.App.HistorySummaries(), nil
}
