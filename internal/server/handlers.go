package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/claude/trackmate/internal/app"
	"github.com/claude/trackmate/internal/ingest"
	"github.com/go-chi/chi/v5"
)

// maxImportBytes caps pasted workout text and candidate bodies.
const maxImportBytes = 1 << 20

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"prompt": ingest.FormatPrompt()})
}

// previewResponse is the parsed candidate plus the normalized text, so the
// client can show what was actually parsed.
type previewResponse struct {
	Normalized string            `json:"normalized"`
	Candidate  *ingest.Candidate `json:"candidate"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
		return
	}

	normalized, c, err := s.app.Preview(string(body))
	if err != nil {
		writeImportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{Normalized: normalized, Candidate: c})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var c ingest.Candidate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes)).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	save := s.app.Import
	if r.URL.Query().Get("session") == "false" {
		save = s.app.SaveTemplate
	}
	workout, err := save(r.Context(), c)
	if err != nil {
		if ingest.IsImportError(err) {
			writeImportError(w, err)
			return
		}
		s.log.Error("import error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Templates())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.HistorySummaries())
}

func (s *Server) handleStartTemplate(w http.ResponseWriter, r *http.Request) {
	snap, err := s.app.StartTemplate(chi.URLParam(r, "id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// writeImportError reports a parser or commit failure with the short
// title and description the frontend shows in its notification.
func writeImportError(w http.ResponseWriter, err error) {
	title, desc := ingest.UserMessage(err)
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error":       err.Error(),
		"title":       title,
		"description": desc,
	})
}

// writeSessionError maps controller errors to HTTP statuses.
func writeSessionError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrNoActiveSession), errors.Is(err, app.ErrTemplateNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrWorkoutIncomplete):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
