package trial

import "github.com/shopspring/decimal"

// HiddenSentinel replaces the bomb index, outcome, and payoff in export
// records produced before the trial reveals.
const HiddenSentinel = "(hidden until reveal)"

// Record is the read-only export surface for session logging. The
// post-reveal-only fields hold the sentinel string until reveal, and the
// real values (int, Outcome, decimal) afterwards. It carries no behavior.
type Record struct {
	SessionID    string          `json:"session_id"`
	BoxCount     int             `json:"box_count"`
	OpenedCount  int             `json:"opened_count"`
	PayoffPerBox decimal.Decimal `json:"payoff_per_box"`
	BombIndex    any             `json:"bomb_index"`
	Outcome      any             `json:"outcome"`
	Payoff       any             `json:"payoff"`
}

// Record builds the export record for the trial's current state.
func (t *Trial) Record() Record {
	r := Record{
		SessionID:    t.sessionID,
		BoxCount:     t.cfg.BoxCount,
		OpenedCount:  t.openedCount,
		PayoffPerBox: t.cfg.PayoffPerBox,
		BombIndex:    HiddenSentinel,
		Outcome:      HiddenSentinel,
		Payoff:       HiddenSentinel,
	}
	if t.revealed {
		r.BombIndex = t.bombIndex
		r.Outcome = t.outcome
		r.Payoff = *t.payoff
	}
	return r
}
