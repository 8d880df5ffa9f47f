package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/trackmate/internal/app"
	"github.com/claude/trackmate/internal/models"
	"github.com/claude/trackmate/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

// fakeSource is a DataSource with canned results.
type fakeSource struct {
	templates []models.Workout
	history   []models.SessionSummary
	err       error
}

func (f *fakeSource) ImportWorkout(context.Context, string) (models.Workout, error) {
	return models.Workout{}, f.err
}
func (f *fakeSource) ListTemplates(context.Context) ([]models.Workout, error) {
	return f.templates, f.err
}
func (f *fakeSource) ListHistory(context.Context) ([]models.SessionSummary, error) {
	return f.history, f.err
}

func newLocalHandlers(t *testing.T) (*handlers, *app.App) {
	t.Helper()
	a := app.New(storage.NewStore(storage.NewMemory()), discardLogger())
	a.Load(context.Background())
	return &handlers{ds: Local{App: a}, log: discardLogger()}, a
}

// TestNewRegistersTools verifies the server builds with its tools and resources.
func TestNewRegistersTools(t *testing.T) {
	s := New(&fakeSource{}, "test", discardLogger())
	if s == nil {
		t.Fatal("New returned nil")
	}
	for _, name := range []string{"get_format_prompt", "preview_workout", "import_workout", "list_templates", "get_history"} {
		if s.GetTool(name) == nil {
			t.Errorf("tool %q not registered", name)
		}
	}
}

// TestGetFormatPrompt verifies the format hint is returned as text.
func TestGetFormatPrompt(t *testing.T) {
	h := &handlers{ds: &fakeSource{}, log: discardLogger()}
	res, err := h.getFormatPrompt(context.Background(), callTool(nil))
	if err != nil {
		t.Fatal(err)
	}
	if text := resultText(t, res); !strings.Contains(text, "JSON") {
		t.Errorf("prompt = %q", text)
	}
}

// TestPreviewWorkout verifies preview parses without saving.
func TestPreviewWorkout(t *testing.T) {
	h, a := newLocalHandlers(t)
	res, err := h.previewWorkout(context.Background(), callTool(map[string]any{
		"text": `{"Pull": {"Row": {"sets": 4, "reps": "8"}, "Curl": {}}}`,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("preview error: %s", resultText(t, res))
	}
	var c struct {
		Name      string `json:"name"`
		Exercises []struct {
			Name       string `json:"name"`
			Sets       int    `json:"sets"`
			TargetReps string `json:"target_reps"`
		} `json:"exercises"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &c); err != nil {
		t.Fatal(err)
	}
	if c.Name != "Pull" || len(c.Exercises) != 2 || c.Exercises[1].Sets != 3 || c.Exercises[1].TargetReps != "8-10" {
		t.Errorf("candidate = %+v", c)
	}
	if n := len(a.Templates()); n != 0 {
		t.Errorf("preview saved %d templates", n)
	}
}

// TestPreviewWorkoutBadJSON verifies parser errors come back as tool errors
// with the user-facing wording.
func TestPreviewWorkoutBadJSON(t *testing.T) {
	h, _ := newLocalHandlers(t)
	res, err := h.previewWorkout(context.Background(), callTool(map[string]any{"text": "{not json"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected tool error")
	}
	if text := resultText(t, res); !strings.HasPrefix(text, "Invalid JSON format") {
		t.Errorf("error text = %q", text)
	}
}

// TestMissingText verifies the required parameter is enforced.
func TestMissingText(t *testing.T) {
	h, _ := newLocalHandlers(t)
	for _, fn := range []func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){h.previewWorkout, h.importWorkout} {
		res, err := fn(context.Background(), callTool(map[string]any{}))
		if err != nil {
			t.Fatal(err)
		}
		if !res.IsError {
			t.Error("expected tool error for missing text")
		}
	}
}

// TestImportAndList verifies an imported workout shows up in list_templates.
func TestImportAndList(t *testing.T) {
	ctx := context.Background()
	h, a := newLocalHandlers(t)

	res, err := h.importWorkout(ctx, callTool(map[string]any{
		"text": `{"Legs": {"Squat": {"sets": 5, "reps": "5"}}}`,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("import error: %s", resultText(t, res))
	}
	if _, err := a.Session(); err != nil {
		t.Errorf("import did not start a session: %v", err)
	}

	res, err = h.listTemplates(ctx, callTool(nil))
	if err != nil {
		t.Fatal(err)
	}
	var templates []models.Workout
	if err := json.Unmarshal([]byte(resultText(t, res)), &templates); err != nil {
		t.Fatal(err)
	}
	if len(templates) != 1 || templates[0].Name != "Legs" || templates[0].Exercises[0].Sets != 5 {
		t.Errorf("templates = %+v", templates)
	}
}

// TestImportSourceFailure verifies non-parser failures are reported, not returned.
func TestImportSourceFailure(t *testing.T) {
	h := &handlers{ds: &fakeSource{err: errors.New("connection refused")}, log: discardLogger()}
	res, err := h.importWorkout(context.Background(), callTool(map[string]any{"text": "{}"}))
	if err != nil {
		t.Fatal(err)
	}
	if text := resultText(t, res); !res.IsError || !strings.Contains(text, "connection refused") {
		t.Errorf("result = %q (error=%v)", text, res.IsError)
	}
}

func summaries(n int) []models.SessionSummary {
	out := make([]models.SessionSummary, n)
	for i := range out {
		out[i].ID = string(rune('a' + i))
		out[i].Date = time.Date(2026, 1, 20-i, 0, 0, 0, 0, time.UTC)
	}
	return out
}

// TestGetHistoryLimit verifies the optional limit truncates from the newest end.
func TestGetHistoryLimit(t *testing.T) {
	h := &handlers{ds: &fakeSource{history: summaries(5)}, log: discardLogger()}

	res, err := h.getHistory(context.Background(), callTool(map[string]any{"limit": float64(2)}))
	if err != nil {
		t.Fatal(err)
	}
	var got []models.SessionSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("history = %+v", got)
	}

	res, err = h.getHistory(context.Background(), callTool(nil))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Errorf("unlimited history len = %d, want 5", len(got))
	}
}

// TestRecentHistoryResource verifies the resource caps the list.
func TestRecentHistoryResource(t *testing.T) {
	h := &handlers{ds: &fakeSource{history: summaries(12)}, log: discardLogger()}
	var req mcp.ReadResourceRequest
	req.Params.URI = "trackmate://recent_history"

	contents, err := h.recentHistory(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents[0] is %T", contents[0])
	}
	var got []models.SessionSummary
	if err := json.Unmarshal([]byte(text.Text), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != recentHistoryLimit {
		t.Errorf("len = %d, want %d", len(got), recentHistoryLimit)
	}
	if text.URI != "trackmate://recent_history" {
		t.Errorf("uri = %q", text.URI)
	}
}
