package store

import (
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a session id has no record.
var ErrNotFound = errors.New("session not found")

// DB is the session archive interface. It is a write-mostly record sink:
// rows are created at reset, finalized at reveal, and read back only for
// listing and export — never to restore a live trial.
type DB interface {
	Close() error
	Migrate() error
	SaveSession(s *Session) error
	UpdateSession(s *Session) error
	GetSession(id string) (*Session, error)
	ListSessions(q SessionsQuery) (*SessionsList, error)
	ExportCSV(w io.Writer) error
}

// Session source values.
const (
	SourceLive     = "live"
	SourceScripted = "scripted"
)

// Session is one archived trial row. The post-reveal fields are nil until
// the trial revealed.
type Session struct {
	ID           string           `json:"id" db:"id"`
	BoxCount     int              `json:"box_count" db:"box_count"`
	GridColumns  int              `json:"grid_columns" db:"grid_columns"`
	PayoffPerBox decimal.Decimal  `json:"payoff_per_box" db:"payoff_per_box"`
	OpenedCount  int              `json:"opened_count" db:"opened_count"`
	Revealed     bool             `json:"revealed" db:"revealed"`
	BombIndex    *int             `json:"bomb_index,omitempty" db:"bomb_index"`
	Outcome      string           `json:"outcome" db:"outcome"`
	Payoff       *decimal.Decimal `json:"payoff,omitempty" db:"payoff"`
	Source       string           `json:"source" db:"source"`
	StartedAt    time.Time        `json:"started_at" db:"started_at"`
	RevealedAt   *time.Time       `json:"revealed_at,omitempty" db:"revealed_at"`
}

// SessionsQuery represents query parameters for listing sessions.
type SessionsQuery struct {
	Outcome string `json:"outcome,omitempty"`
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
}

// SessionsList represents a paginated sessions response.
type SessionsList struct {
	Sessions   []Session `json:"sessions"`
	TotalCount int       `json:"totalCount"`
	Page       int       `json:"page"`
	PerPage    int       `json:"perPage"`
	TotalPages int       `json:"totalPages"`
}
