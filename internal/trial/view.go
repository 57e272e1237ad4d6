package trial

import "github.com/shopspring/decimal"

// View is the read-only projection handed to renderers. BombIndex and
// Payoff are nil and Outcome is OutcomeUnrevealed until the trial reveals.
type View struct {
	SessionID    string           `json:"session_id"`
	BoxCount     int              `json:"box_count"`
	GridColumns  int              `json:"grid_columns"`
	PayoffPerBox decimal.Decimal  `json:"payoff_per_box"`
	OpenedCount  int              `json:"opened_count"`
	Revealed     bool             `json:"revealed"`
	Outcome      Outcome          `json:"outcome"`
	BombIndex    *int             `json:"bomb_index,omitempty"`
	Payoff       *decimal.Decimal `json:"payoff,omitempty"`
}

// CanOpen reports whether the open-next control should be enabled.
func (v View) CanOpen() bool {
	return !v.Revealed && v.OpenedCount < v.BoxCount
}

// CanStop reports whether the stop control should be enabled.
func (v View) CanStop() bool {
	return !v.Revealed && v.OpenedCount > 0
}

// CellState labels a single grid cell for rendering.
type CellState string

const (
	CellClosed     CellState = "closed"
	CellOpened     CellState = "opened"
	CellOpenedSafe CellState = "opened-safe"
	CellBomb       CellState = "bomb"
)

// Label returns the render state of box i (1-based). It is pure: derivable
// entirely from the view, so pre-reveal it cannot depend on the bomb.
func Label(v View, i int) CellState {
	if v.Revealed {
		if v.BombIndex != nil && i == *v.BombIndex {
			return CellBomb
		}
		if i <= v.OpenedCount {
			return CellOpenedSafe
		}
		return CellClosed
	}
	if i <= v.OpenedCount {
		return CellOpened
	}
	return CellClosed
}

// Labels returns the state of every box in order, for grid rendering.
func Labels(v View) []CellState {
	out := make([]CellState, v.BoxCount)
	for i := 1; i <= v.BoxCount; i++ {
		out[i-1] = Label(v, i)
	}
	return out
}
