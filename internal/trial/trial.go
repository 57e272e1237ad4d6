// Package trial implements the Bomb Risk Elicitation Task state machine:
// a participant opens sequentially numbered boxes one at a time, any one of
// which may hold a hidden bomb, and may stop at any point to lock in a
// payoff proportional to the boxes opened — provided none of them held the
// bomb. The bomb position stays concealed until the participant stops.
package trial

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outcome is the terminal result of a trial.
type Outcome string

const (
	OutcomeUnrevealed Outcome = "unrevealed"
	OutcomeSafe       Outcome = "safe"
	OutcomeBombed     Outcome = "bombed"
)

// Trial is a single in-progress or revealed game. All fields are private;
// the only reads go through Snapshot and Record, which hide the bomb until
// reveal. Stop is the sole writer of revealed/outcome/payoff.
type Trial struct {
	cfg       Config
	sessionID string
	startedAt time.Time

	bombIndex   int // 1-based, concealed until reveal
	openedCount int
	revealed    bool
	outcome     Outcome
	payoff      *decimal.Decimal
}

// New starts a fresh trial: draws the bomb uniformly in [1, BoxCount] from
// src and assigns a new session ID. A nil src falls back to a time-seeded
// ambient source.
func New(cfg Config, src FloatSource) (*Trial, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = ambientSource()
	}
	return &Trial{
		cfg:       cfg,
		sessionID: uuid.New().String(),
		startedAt: time.Now().UTC(),
		bombIndex: drawBombIndex(src.Float64(), cfg.BoxCount),
		outcome:   OutcomeUnrevealed,
	}, nil
}

// Config returns the immutable configuration the trial was started with.
func (t *Trial) Config() Config { return t.cfg }

// SessionID returns the opaque record-keeping identifier. It never
// influences game logic.
func (t *Trial) SessionID() string { return t.sessionID }

// StartedAt returns when the trial was created.
func (t *Trial) StartedAt() time.Time { return t.startedAt }

// OpenNext opens the next sequential box. The bomb position is not
// consulted: opening past the bomb is legal and indistinguishable from a
// safe open until reveal.
func (t *Trial) OpenNext() error {
	if t.revealed {
		return fmt.Errorf("open next: trial already revealed: %w", ErrInvalidTransition)
	}
	if t.openedCount >= t.cfg.BoxCount {
		return fmt.Errorf("open next: all %d boxes already open: %w", t.cfg.BoxCount, ErrInvalidTransition)
	}
	t.openedCount++
	return nil
}

// Stop irreversibly reveals the bomb and finalizes the payoff. Stopping
// with zero boxes opened is rejected: the participant must commit to at
// least one decision point. After Stop succeeds the trial is terminal and
// both OpenNext and Stop are rejected until the next New.
func (t *Trial) Stop() error {
	if t.revealed {
		return fmt.Errorf("stop: trial already revealed: %w", ErrInvalidTransition)
	}
	if t.openedCount == 0 {
		return fmt.Errorf("stop: no boxes opened: %w", ErrInvalidTransition)
	}
	t.revealed = true
	if t.bombIndex <= t.openedCount {
		t.outcome = OutcomeBombed
		zero := decimal.Zero
		t.payoff = &zero
	} else {
		t.outcome = OutcomeSafe
		p := t.cfg.PayoffPerBox.Mul(decimal.NewFromInt(int64(t.openedCount)))
		t.payoff = &p
	}
	return nil
}

// Snapshot projects render-ready state. While the trial is unrevealed the
// bomb index, outcome, and payoff are withheld — the projection carries nil
// pointers and OutcomeUnrevealed, so a renderer cannot leak the bomb early.
func (t *Trial) Snapshot() View {
	v := View{
		SessionID:    t.sessionID,
		BoxCount:     t.cfg.BoxCount,
		GridColumns:  t.cfg.GridColumns,
		PayoffPerBox: t.cfg.PayoffPerBox,
		OpenedCount:  t.openedCount,
		Revealed:     t.revealed,
		Outcome:      OutcomeUnrevealed,
	}
	if t.revealed {
		bomb := t.bombIndex
		payoff := *t.payoff
		v.BombIndex = &bomb
		v.Outcome = t.outcome
		v.Payoff = &payoff
	}
	return v
}
