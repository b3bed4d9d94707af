package processors

import (
	"time"

	"github.com/triggerNode/BuxTax/src/models"
)

// Payout Pulse windows.
const (
	WindowAll    = "all"
	Window30Days = "30d"
	Window90Days = "90d"
)

// PulseProcessor summarizes payout records over a trailing window.
type PulseProcessor interface {
	Summarize(records []models.PayoutRecord, window string, now time.Time) (models.PulseSummary, error)
}

// GoalProcessor measures uploaded earnings against a USD target.
type GoalProcessor interface {
	Track(records []models.PayoutRecord, targetUSD float64, deadline, now time.Time) (models.GoalProgress, error)
}
