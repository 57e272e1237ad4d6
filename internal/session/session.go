// Package session owns the single active trial as an exclusive-owner
// module. A mutex serializes every mutation, so an HTTP handler and a
// renderer can never interleave half-applied actions; there is exactly one
// live trial at a time and it is replaced wholesale on reset.
package session

import (
	"io"
	"log"
	"sync"
	"time"

	"bret/internal/store"
	"bret/internal/trial"
)

// Module holds the one active trial and mirrors it into the session
// archive. A nil db disables archiving; gameplay is unaffected.
type Module struct {
	mu     sync.Mutex
	trial  *trial.Trial
	cfg    trial.Config
	src    trial.FloatSource
	db     store.DB
	logger *log.Logger
}

// New creates a session module. src seeds the bomb draws (nil for ambient
// randomness); logger may be nil to discard archive warnings.
func New(db store.DB, src trial.FloatSource, logger *log.Logger) *Module {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Module{
		cfg:    trial.DefaultConfig(),
		src:    src,
		db:     db,
		logger: logger,
	}
}

// Reset discards the current trial and starts a new one for a new
// participant. The config is frozen into the new trial for its lifetime.
func (m *Module) Reset(cfg trial.Config) (trial.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := trial.New(cfg, m.src)
	if err != nil {
		return trial.View{}, err
	}
	m.trial = t
	m.cfg = cfg
	m.archiveNew(t)
	return t.Snapshot(), nil
}

// OpenNext opens the next sequential box of the active trial.
func (m *Module) OpenNext() (trial.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.ensure()
	if err != nil {
		return trial.View{}, err
	}
	if err := t.OpenNext(); err != nil {
		return t.Snapshot(), err
	}
	m.archiveProgress(t)
	return t.Snapshot(), nil
}

// Stop reveals the active trial and finalizes its payoff.
func (m *Module) Stop() (trial.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.ensure()
	if err != nil {
		return trial.View{}, err
	}
	if err := t.Stop(); err != nil {
		return t.Snapshot(), err
	}
	m.archiveProgress(t)
	return t.Snapshot(), nil
}

// Snapshot returns the render view of the active trial, starting one with
// the current config if none exists yet.
func (m *Module) Snapshot() (trial.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.ensure()
	if err != nil {
		return trial.View{}, err
	}
	return t.Snapshot(), nil
}

// Record returns the export record of the active trial.
func (m *Module) Record() (trial.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.ensure()
	if err != nil {
		return trial.Record{}, err
	}
	return t.Record(), nil
}

// ensure lazily starts a trial so first-contact reads work without an
// explicit reset. Caller holds the lock.
func (m *Module) ensure() (*trial.Trial, error) {
	if m.trial != nil {
		return m.trial, nil
	}
	t, err := trial.New(m.cfg, m.src)
	if err != nil {
		return nil, err
	}
	m.trial = t
	m.archiveNew(t)
	return t, nil
}

// archiveNew inserts the archive row for a fresh trial. Archive failures
// are logged, not surfaced: record-keeping must never block gameplay.
func (m *Module) archiveNew(t *trial.Trial) {
	if m.db == nil {
		return
	}
	if err := m.db.SaveSession(sessionRow(t, store.SourceLive)); err != nil {
		m.logger.Printf("session archive insert failed: %v", err)
	}
}

func (m *Module) archiveProgress(t *trial.Trial) {
	if m.db == nil {
		return
	}
	if err := m.db.UpdateSession(sessionRow(t, store.SourceLive)); err != nil {
		m.logger.Printf("session archive update failed: %v", err)
	}
}

// sessionRow builds the archive row from the trial's public projection.
// Going through Snapshot keeps the bomb out of the database until reveal.
func sessionRow(t *trial.Trial, source string) *store.Session {
	v := t.Snapshot()
	sess := &store.Session{
		ID:           v.SessionID,
		BoxCount:     v.BoxCount,
		GridColumns:  v.GridColumns,
		PayoffPerBox: v.PayoffPerBox,
		OpenedCount:  v.OpenedCount,
		Revealed:     v.Revealed,
		Outcome:      string(v.Outcome),
		Source:       source,
		StartedAt:    t.StartedAt(),
	}
	if v.Revealed {
		sess.BombIndex = v.BombIndex
		sess.Payoff = v.Payoff
		now := time.Now().UTC()
		sess.RevealedAt = &now
	}
	return sess
}

// Row exposes the archive projection of an arbitrary trial for callers
// that persist trials outside the live module, such as scripted batches.
func Row(t *trial.Trial, source string) *store.Session {
	if source != store.SourceLive && source != store.SourceScripted {
		source = store.SourceLive
	}
	return sessionRow(t, source)
}
