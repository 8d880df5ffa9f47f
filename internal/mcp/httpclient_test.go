package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/trackmate/internal/ingest"
	"github.com/claude/trackmate/internal/models"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and bodies.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestImportWorkoutRemote verifies the client previews the raw text and then
// commits the returned candidate.
func TestImportWorkoutRemote(t *testing.T) {
	var committed ingest.Candidate
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/import/preview": func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if got := r.Header.Get("X-API-Key"); got != "k" {
				t.Errorf("X-API-Key = %q, want k", got)
			}
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), "Bench") {
				t.Errorf("preview body = %q", body)
			}
			writeTestJSON(t, w, http.StatusOK, map[string]any{
				"normalized": string(body),
				"candidate": ingest.Candidate{Name: "Push", Exercises: []ingest.CandidateExercise{
					{Name: "Bench", Sets: 4, TargetReps: "6-8"},
				}},
			})
		},
		"/api/v1/import": func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&committed); err != nil {
				t.Errorf("decode candidate: %v", err)
			}
			writeTestJSON(t, w, http.StatusCreated, models.Workout{
				ID: "w1", Name: committed.Name,
				Exercises: []models.Exercise{{ID: "e1", Name: "Bench", Sets: 4, TargetReps: "6-8"}},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL+"/", "k")
	w, err := client.ImportWorkout(context.Background(), `{"Push":{"Bench":{"sets":4,"reps":"6-8"}}}`)
	if err != nil {
		t.Fatal(err)
	}
	if w.ID != "w1" || w.Name != "Push" {
		t.Errorf("workout = %+v", w)
	}
	if committed.Name != "Push" || len(committed.Exercises) != 1 {
		t.Errorf("committed = %+v", committed)
	}
}

// TestImportWorkoutRemoteParseError verifies the API's user-facing error
// text is surfaced.
func TestImportWorkoutRemoteParseError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/import/preview": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, http.StatusBadRequest, map[string]string{
				"error":       "malformed syntax",
				"title":       "Invalid JSON format",
				"description": "Please check your JSON format and try again.",
			})
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL, "").ImportWorkout(context.Background(), "{not json")
	if err == nil || !strings.Contains(err.Error(), "Invalid JSON format") {
		t.Errorf("err = %v", err)
	}
}

// TestListTemplatesRemote verifies the template list is decoded.
func TestListTemplatesRemote(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/templates": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("X-API-Key"); got != "" {
				t.Errorf("unexpected X-API-Key %q", got)
			}
			writeTestJSON(t, w, http.StatusOK, []models.Workout{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}})
		},
	})
	defer ts.Close()

	got, err := NewHTTPClient(ts.URL, "").ListTemplates(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Name != "B" {
		t.Errorf("templates = %+v", got)
	}
}

// TestListHistoryRemote verifies summaries keep their counts across the wire.
func TestListHistoryRemote(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/history": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, http.StatusOK, []models.SessionSummary{
				{WorkoutSession: models.WorkoutSession{ID: "s1", TemplateID: "a"}, WorkoutName: "A", ExercisesCompleted: 2, ExercisesTotal: 3, SetsCompleted: 7},
			})
		},
	})
	defer ts.Close()

	got, err := NewHTTPClient(ts.URL, "").ListHistory(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "s1" || got[0].SetsCompleted != 7 || got[0].ExercisesTotal != 3 {
		t.Errorf("history = %+v", got)
	}
}

// TestHTTPClientServerError verifies non-JSON error bodies are reported with the status.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/templates": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL, "").ListTemplates(context.Background())
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("err = %v, want status 500", err)
	}
}
