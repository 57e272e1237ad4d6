package api

import (
	"github.com/shopspring/decimal"

	"bret/internal/store"
	"bret/internal/trial"
)

// ResetRequest starts a new participant / new game. Zero-valued fields
// fall back to the engine defaults (100 boxes, 10 columns, 10 per box).
type ResetRequest struct {
	BoxCount     int             `json:"box_count,omitempty"`
	GridColumns  int             `json:"grid_columns,omitempty"`
	PayoffPerBox decimal.Decimal `json:"payoff_per_box,omitempty"`
}

// Config fills in defaults and produces the engine config.
func (req ResetRequest) Config() trial.Config {
	cfg := trial.DefaultConfig()
	if req.BoxCount != 0 {
		cfg.BoxCount = req.BoxCount
	}
	if req.GridColumns != 0 {
		cfg.GridColumns = req.GridColumns
	}
	if !req.PayoffPerBox.IsZero() {
		cfg.PayoffPerBox = req.PayoffPerBox
	}
	return cfg
}

// TrialResponse wraps the render view of the active trial.
type TrialResponse struct {
	Trial         trial.View `json:"trial"`
	EngineVersion string     `json:"engine_version"`
}

// GridResponse carries the per-cell labels for grid rendering.
type GridResponse struct {
	SessionID     string            `json:"session_id"`
	BoxCount      int               `json:"box_count"`
	GridColumns   int               `json:"grid_columns"`
	Cells         []trial.CellState `json:"cells"`
	EngineVersion string            `json:"engine_version"`
}

// RecordResponse wraps the export record of the active trial.
type RecordResponse struct {
	Record        trial.Record `json:"record"`
	EngineVersion string       `json:"engine_version"`
}

// SessionsResponse wraps a page of archived sessions.
type SessionsResponse struct {
	store.SessionsList
	EngineVersion string `json:"engine_version"`
}

// SessionResponse wraps a single archived session.
type SessionResponse struct {
	Session       store.Session `json:"session"`
	EngineVersion string        `json:"engine_version"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status        string `json:"status"`
	EngineVersion string `json:"engine_version"`
	Timestamp     string `json:"timestamp"`
}
