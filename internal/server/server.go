package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/claude/trackmate/internal/app"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	app    *app.App
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all API routes configured. When apiKey is
// empty the API is open (tsnet or a reverse proxy handles access).
func New(a *app.App, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		app:    a,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		r.Get("/prompt", s.handlePrompt)
		r.Post("/import/preview", s.handlePreview)
		r.Post("/import", s.handleImport)

		r.Get("/templates", s.handleTemplates)
		r.Post("/templates/{id}/start", s.handleStartTemplate)
		r.Get("/history", s.handleHistory)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleAbandonSession)
			r.Post("/complete", s.handleCompleteSession)
			r.Post("/exercises/{id}/toggle", s.handleToggleExercise)
			r.Post("/exercises/{id}/display/{field}", s.handleToggleDisplay)
			r.Patch("/exercises/{id}/sets/{index}", s.handleUpdateSet)
		})
	})
}

// SetMCP mounts an MCP streamable HTTP handler at /mcp behind the same
// API key check as the REST API.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(APIKeyAuth(s.apiKey)).Handle("/mcp", h)
}

// SetFrontend mounts the SPA filesystem.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback to index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
