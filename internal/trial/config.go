package trial

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Valid ranges for trial configuration. GridColumns is a rendering hint
// only and is never consulted by game logic.
const (
	MinBoxCount    = 10
	MaxBoxCount    = 200
	MinGridColumns = 5
	MaxGridColumns = 20

	DefaultBoxCount    = 100
	DefaultGridColumns = 10
)

// DefaultPayoffPerBox is the reward per safely opened box (points, tokens,
// rupees — whatever the lab pays in).
var DefaultPayoffPerBox = decimal.NewFromInt(10)

// Config is the immutable per-session trial configuration.
type Config struct {
	BoxCount     int             `json:"box_count"`
	GridColumns  int             `json:"grid_columns"`
	PayoffPerBox decimal.Decimal `json:"payoff_per_box"`
}

// DefaultConfig returns the reference configuration: 100 boxes in a 10-wide
// grid paying 10 per safe box.
func DefaultConfig() Config {
	return Config{
		BoxCount:     DefaultBoxCount,
		GridColumns:  DefaultGridColumns,
		PayoffPerBox: DefaultPayoffPerBox,
	}
}

// Validate rejects structurally invalid configs. The engine rejects rather
// than clamps; range clamping of user input is the caller's concern.
func (c Config) Validate() error {
	if c.BoxCount < MinBoxCount || c.BoxCount > MaxBoxCount {
		return fmt.Errorf("box count must be between %d and %d, got %d: %w",
			MinBoxCount, MaxBoxCount, c.BoxCount, ErrInvalidConfig)
	}
	if c.GridColumns < MinGridColumns || c.GridColumns > MaxGridColumns {
		return fmt.Errorf("grid columns must be between %d and %d, got %d: %w",
			MinGridColumns, MaxGridColumns, c.GridColumns, ErrInvalidConfig)
	}
	if !c.PayoffPerBox.IsPositive() {
		return fmt.Errorf("payoff per box must be positive, got %s: %w",
			c.PayoffPerBox, ErrInvalidConfig)
	}
	return nil
}
