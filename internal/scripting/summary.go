package scripting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"bret/internal/trial"
)

// Summary aggregates a batch of scripted sessions.
type Summary struct {
	Sessions    int             `json:"sessions"`
	Safe        int             `json:"safe"`
	Bombed      int             `json:"bombed"`
	TotalOpened int             `json:"total_opened"`
	TotalPayoff decimal.Decimal `json:"total_payoff"`
}

// NewSummary returns an empty summary.
func NewSummary() *Summary {
	return &Summary{TotalPayoff: decimal.Zero}
}

// Add folds one revealed session into the aggregate.
func (s *Summary) Add(v trial.View) {
	if !v.Revealed {
		return
	}
	s.Sessions++
	s.TotalOpened += v.OpenedCount
	switch v.Outcome {
	case trial.OutcomeSafe:
		s.Safe++
	case trial.OutcomeBombed:
		s.Bombed++
	}
	if v.Payoff != nil {
		s.TotalPayoff = s.TotalPayoff.Add(*v.Payoff)
	}
}

// MeanOpened returns the average stopping point across the batch.
func (s *Summary) MeanOpened() float64 {
	if s.Sessions == 0 {
		return 0
	}
	return float64(s.TotalOpened) / float64(s.Sessions)
}

// MeanPayoff returns the average payoff per session.
func (s *Summary) MeanPayoff() decimal.Decimal {
	if s.Sessions == 0 {
		return decimal.Zero
	}
	return s.TotalPayoff.Div(decimal.NewFromInt(int64(s.Sessions)))
}

// String renders a one-line batch report.
func (s *Summary) String() string {
	return fmt.Sprintf("sessions=%d safe=%d bombed=%d mean_opened=%.2f mean_payoff=%s",
		s.Sessions, s.Safe, s.Bombed, s.MeanOpened(), s.MeanPayoff())
}
