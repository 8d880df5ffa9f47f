package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/claude/trackmate/internal/session"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.app.Session()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Abandon(); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleExercise(w http.ResponseWriter, r *http.Request) {
	snap, err := s.app.ToggleExercise(chi.URLParam(r, "id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleToggleDisplay(w http.ResponseWriter, r *http.Request) {
	field, ok := session.ParseDisplayField(chi.URLParam(r, "field"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "field must be one of sets, weight, reps"})
		return
	}
	snap, err := s.app.ToggleDisplay(chi.URLParam(r, "id"), field)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// setUpdateRequest accepts weight and reps as strings (raw input) or numbers.
type setUpdateRequest struct {
	Done   *bool           `json:"done"`
	Weight json.RawMessage `json:"weight"`
	Reps   json.RawMessage `json:"reps"`
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set index"})
		return
	}

	var req setUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	snap, err := s.app.UpdateSet(chi.URLParam(r, "id"), index, session.SetUpdate{
		Done:   req.Done,
		Weight: rawInput(req.Weight),
		Reps:   rawInput(req.Reps),
	})
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.app.Complete(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// rawInput turns a JSON field into the text a user would have typed: absent
// stays nil, null becomes "" (clear), strings are unquoted and numbers keep
// their literal form.
func rawInput(raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	var s string
	if bytes.Equal(raw, []byte("null")) {
		return &s
	}
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	s = string(raw)
	return &s
}
