package scripting

import (
	"fmt"
	"io"
	"log"

	"bret/internal/session"
	"bret/internal/store"
	"bret/internal/trial"
)

// maxDecisionsPerSession bounds a strategy that keeps answering OPEN after
// the grid is exhausted or otherwise loops.
const maxDecisionsPerSession = 1000

// Runner plays scripted sessions against the trial engine and archives
// the outcomes.
type Runner struct {
	vm     *VM
	cfg    trial.Config
	src    trial.FloatSource
	db     store.DB
	logger *log.Logger
}

// NewRunner compiles the strategy source and prepares a batch. src seeds
// the bomb draws so a batch can be replayed; db may be nil to skip
// archiving.
func NewRunner(source string, cfg trial.Config, src trial.FloatSource, db store.DB, logger *log.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	vm := NewVM()
	if err := vm.Execute(source); err != nil {
		return nil, err
	}
	if !vm.HasDecideFunc() {
		return nil, fmt.Errorf("strategy must define decide(trial)")
	}

	return &Runner{vm: vm, cfg: cfg, src: src, db: db, logger: logger}, nil
}

// Run plays count sessions to completion and returns the aggregate.
func (r *Runner) Run(count int) (*Summary, error) {
	if count < 1 {
		return nil, fmt.Errorf("session count must be positive, got %d", count)
	}

	summary := NewSummary()
	for i := 0; i < count; i++ {
		v, err := r.playOne()
		if err != nil {
			return nil, fmt.Errorf("session %d/%d: %w", i+1, count, err)
		}
		summary.Add(v)
	}
	return summary, nil
}

// playOne runs a single trial to reveal under the strategy's decisions.
func (r *Runner) playOne() (trial.View, error) {
	t, err := trial.New(r.cfg, r.src)
	if err != nil {
		return trial.View{}, err
	}

	for decisions := 0; ; decisions++ {
		if decisions >= maxDecisionsPerSession {
			return trial.View{}, fmt.Errorf("strategy exceeded %d decisions without stopping", maxDecisionsPerSession)
		}

		v := t.Snapshot()
		action, err := r.vm.CallDecide(v)
		if err != nil {
			return trial.View{}, err
		}

		// A stop with nothing opened is the one decision the task forbids;
		// surface it as a strategy bug rather than looping forever.
		if action == ActionStop && v.OpenedCount == 0 {
			return trial.View{}, fmt.Errorf("strategy stopped before opening any box")
		}

		if action == ActionOpen && !v.CanOpen() {
			// Grid exhausted; the only legal continuation is to stop.
			r.logger.Printf("strategy answered OPEN with all %d boxes open, stopping", v.BoxCount)
			action = ActionStop
		}

		switch action {
		case ActionOpen:
			err = t.OpenNext()
		case ActionStop:
			err = t.Stop()
		}
		if err != nil {
			return trial.View{}, err
		}

		if action == ActionStop {
			break
		}
	}

	if r.db != nil {
		if err := r.db.SaveSession(session.Row(t, store.SourceScripted)); err != nil {
			r.logger.Printf("scripted session archive failed: %v", err)
		}
	}
	return t.Snapshot(), nil
}

// Logs exposes the script's log buffer.
func (r *Runner) Logs() []LogEntry {
	return r.vm.GetLogs()
}
