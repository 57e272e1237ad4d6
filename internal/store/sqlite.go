package store

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations.
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			box_count INTEGER NOT NULL,
			grid_columns INTEGER NOT NULL,
			payoff_per_box TEXT NOT NULL,
			opened_count INTEGER NOT NULL DEFAULT 0,
			revealed INTEGER NOT NULL DEFAULT 0,
			bomb_index INTEGER,
			outcome TEXT NOT NULL DEFAULT 'unrevealed',
			payoff TEXT,
			source TEXT NOT NULL DEFAULT 'live',
			started_at DATETIME NOT NULL,
			revealed_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_outcome ON sessions(outcome)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveSession inserts a fresh session row.
func (s *SQLiteDB) SaveSession(sess *Session) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (
			id, box_count, grid_columns, payoff_per_box, opened_count,
			revealed, bomb_index, outcome, payoff, source, started_at, revealed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.BoxCount, sess.GridColumns, sess.PayoffPerBox.String(),
		sess.OpenedCount, sess.Revealed, sess.BombIndex, sess.Outcome,
		payoffString(sess.Payoff), sess.Source, sess.StartedAt, sess.RevealedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// UpdateSession overwrites the mutable columns of an existing row. Called
// on every open and once more at reveal.
func (s *SQLiteDB) UpdateSession(sess *Session) error {
	result, err := s.db.Exec(`
		UPDATE sessions SET
			opened_count = ?, revealed = ?, bomb_index = ?,
			outcome = ?, payoff = ?, revealed_at = ?
		WHERE id = ?`,
		sess.OpenedCount, sess.Revealed, sess.BombIndex,
		sess.Outcome, payoffString(sess.Payoff), sess.RevealedAt, sess.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteDB) GetSession(id string) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT id, box_count, grid_columns, payoff_per_box, opened_count,
		       revealed, bomb_index, outcome, payoff, source, started_at, revealed_at
		FROM sessions WHERE id = ?`, id)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// ListSessions returns a paginated page of sessions, newest first.
func (s *SQLiteDB) ListSessions(q SessionsQuery) (*SessionsList, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 || q.PerPage > 100 {
		q.PerPage = 25
	}

	where := ""
	args := []any{}
	if q.Outcome != "" {
		where = " WHERE outcome = ?"
		args = append(args, q.Outcome)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sessions"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	offset := (q.Page - 1) * q.PerPage
	rows, err := s.db.Query(`
		SELECT id, box_count, grid_columns, payoff_per_box, opened_count,
		       revealed, bomb_index, outcome, payoff, source, started_at, revealed_at
		FROM sessions`+where+`
		ORDER BY started_at DESC, id LIMIT ? OFFSET ?`,
		append(args, q.PerPage, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	totalPages := (total + q.PerPage - 1) / q.PerPage
	return &SessionsList{
		Sessions:   sessions,
		TotalCount: total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: totalPages,
	}, nil
}

// ExportCSV streams every session row as CSV, oldest first. Unrevealed
// rows have empty bomb/outcome-dependent columns; the bomb is never in the
// database before reveal, so the export cannot leak it.
func (s *SQLiteDB) ExportCSV(w io.Writer) error {
	rows, err := s.db.Query(`
		SELECT id, box_count, grid_columns, payoff_per_box, opened_count,
		       revealed, bomb_index, outcome, payoff, source, started_at, revealed_at
		FROM sessions ORDER BY started_at, id`)
	if err != nil {
		return fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	header := []string{
		"session_id", "box_count", "grid_columns", "payoff_per_box",
		"opened_count", "revealed", "bomb_index", "outcome", "payoff",
		"source", "started_at", "revealed_at",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return fmt.Errorf("failed to scan session: %w", err)
		}

		bomb := ""
		if sess.BombIndex != nil {
			bomb = strconv.Itoa(*sess.BombIndex)
		}
		payoff := ""
		if sess.Payoff != nil {
			payoff = sess.Payoff.String()
		}
		revealedAt := ""
		if sess.RevealedAt != nil {
			revealedAt = sess.RevealedAt.UTC().Format(time.RFC3339)
		}

		record := []string{
			sess.ID,
			strconv.Itoa(sess.BoxCount),
			strconv.Itoa(sess.GridColumns),
			sess.PayoffPerBox.String(),
			strconv.Itoa(sess.OpenedCount),
			strconv.FormatBool(sess.Revealed),
			bomb,
			sess.Outcome,
			payoff,
			sess.Source,
			sess.StartedAt.UTC().Format(time.RFC3339),
			revealedAt,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate sessions: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*Session, error) {
	var (
		sess       Session
		rate       string
		bombIndex  sql.NullInt64
		payoff     sql.NullString
		revealedAt sql.NullTime
	)
	err := r.Scan(
		&sess.ID, &sess.BoxCount, &sess.GridColumns, &rate, &sess.OpenedCount,
		&sess.Revealed, &bombIndex, &sess.Outcome, &payoff, &sess.Source,
		&sess.StartedAt, &revealedAt,
	)
	if err != nil {
		return nil, err
	}

	sess.PayoffPerBox, err = decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("bad payoff_per_box %q: %w", rate, err)
	}
	if bombIndex.Valid {
		b := int(bombIndex.Int64)
		sess.BombIndex = &b
	}
	if payoff.Valid && payoff.String != "" {
		p, err := decimal.NewFromString(payoff.String)
		if err != nil {
			return nil, fmt.Errorf("bad payoff %q: %w", payoff.String, err)
		}
		sess.Payoff = &p
	}
	if revealedAt.Valid {
		t := revealedAt.Time
		sess.RevealedAt = &t
	}
	return &sess, nil
}

func payoffString(p *decimal.Decimal) any {
	if p == nil {
		return nil
	}
	return p.String()
}
