// Package api exposes the trial engine over HTTP for browser-based lab
// setups. The handlers are a thin renderer boundary: they dispatch the two
// actions and read projections, never the underlying trial state.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bret/internal/session"
	"bret/internal/store"
)

// Server handles HTTP requests.
type Server struct {
	sessions  *session.Module
	db        store.DB
	logger    *log.Logger
	startTime time.Time
}

// NewServer creates a new API server. db may be nil when the archive
// endpoints are not wanted.
func NewServer(sessions *session.Module, db store.DB) *Server {
	return &Server{
		sessions:  sessions,
		db:        db,
		logger:    log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile),
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes with proper middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RecoveryHandler)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/trial", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Get("/grid", s.handleGrid)
			r.Get("/record", s.handleRecord)
			r.Post("/reset", s.handleReset)
			r.Post("/open", s.handleOpen)
			r.Post("/stop", s.handleStop)
		})
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Get("/export.csv", s.handleExportCSV)
			r.Get("/{id}", s.handleGetSession)
		})
	})

	return r
}

// writeJSON writes a JSON response with proper headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeError builds and writes a structured error response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, errType, message string) {
	taskErr := NewError(errType, message).
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method).
		Build()
	logError(s.logger, r, taskErr, statusForType(errType))
	s.writeTaskError(w, taskErr)
}

// writeTaskError writes a pre-built TaskError.
func (s *Server) writeTaskError(w http.ResponseWriter, taskErr TaskError) {
	w.Header().Set("X-Error-Type", taskErr.Type)
	s.writeJSON(w, statusForType(taskErr.Type), taskErr)
}
