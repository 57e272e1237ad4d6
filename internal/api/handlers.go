package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"bret/internal/store"
	"bret/internal/trial"
)

// GET /health
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		EngineVersion: EngineVersion,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

// GET /api/v1/trial
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	v, err := s.sessions.Snapshot()
	if err != nil {
		s.writeError(w, r, ErrTypeInternal, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, TrialResponse{Trial: v, EngineVersion: EngineVersion})
}

// GET /api/v1/trial/grid
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	v, err := s.sessions.Snapshot()
	if err != nil {
		s.writeError(w, r, ErrTypeInternal, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, GridResponse{
		SessionID:     v.SessionID,
		BoxCount:      v.BoxCount,
		GridColumns:   v.GridColumns,
		Cells:         trial.Labels(v),
		EngineVersion: EngineVersion,
	})
}

// GET /api/v1/trial/record
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sessions.Record()
	if err != nil {
		s.writeError(w, r, ErrTypeInternal, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, RecordResponse{Record: rec, EngineVersion: EngineVersion})
}

// POST /api/v1/trial/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, ErrTypeInvalidRequest, "invalid JSON body: "+err.Error())
			return
		}
	}

	v, err := s.sessions.Reset(req.Config())
	if err != nil {
		if errors.Is(err, trial.ErrInvalidConfig) {
			s.writeError(w, r, ErrTypeInvalidConfig, err.Error())
			return
		}
		s.writeError(w, r, ErrTypeInternal, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, TrialResponse{Trial: v, EngineVersion: EngineVersion})
}

// POST /api/v1/trial/open
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	v, err := s.sessions.OpenNext()
	s.writeActionResult(w, r, v, err)
}

// POST /api/v1/trial/stop
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	v, err := s.sessions.Stop()
	s.writeActionResult(w, r, v, err)
}

// writeActionResult maps the engine's failure taxonomy onto the wire.
// Rejected transitions come back as conflicts; the trial state is
// guaranteed untouched, so the client just refreshes its view.
func (s *Server) writeActionResult(w http.ResponseWriter, r *http.Request, v trial.View, err error) {
	if err != nil {
		if errors.Is(err, trial.ErrInvalidTransition) {
			s.writeError(w, r, ErrTypeInvalidTransition, err.Error())
			return
		}
		s.writeError(w, r, ErrTypeInternal, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, TrialResponse{Trial: v, EngineVersion: EngineVersion})
}

// GET /api/v1/sessions
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, ErrTypeNotFound, "session archive is not enabled")
		return
	}

	q := store.SessionsQuery{
		Outcome: r.URL.Query().Get("outcome"),
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "per_page", 25),
	}
	list, err := s.db.ListSessions(q)
	if err != nil {
		s.writeError(w, r, ErrTypeInternal, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, SessionsResponse{SessionsList: *list, EngineVersion: EngineVersion})
}

// GET /api/v1/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, ErrTypeNotFound, "session archive is not enabled")
		return
	}

	id := chi.URLParam(r, "id")
	sess, err := s.db.GetSession(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, r, ErrTypeNotFound, "no session with id "+id)
			return
		}
		s.writeError(w, r, ErrTypeInternal, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{Session: *sess, EngineVersion: EngineVersion})
}

// GET /api/v1/sessions/export.csv
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, ErrTypeNotFound, "session archive is not enabled")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="bret-sessions.csv"`)
	w.Header().Set("X-Engine-Version", EngineVersion)
	if err := s.db.ExportCSV(w); err != nil {
		// Headers are gone; log and abort the stream.
		s.logger.Printf("csv export failed: %v", err)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
