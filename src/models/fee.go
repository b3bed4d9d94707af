package models

// FeeDetail is one line of a fee breakdown: how much a cost category took out of gross.
type FeeDetail struct {
	Category   string  `json:"category"`
	Label      string  `json:"label"`
	TotalUnits float64 `json:"total_units"`
	TotalUSD   float64 `json:"total_usd"`
	Percentage float64 `json:"percentage"` // share of gross, 0-100
}

// PulseSummary aggregates a window of payout records.
type PulseSummary struct {
	Window            string      `json:"window"`
	Records           int         `json:"records"`
	DateRange         DateRange   `json:"date_range"`
	TotalGross        float64     `json:"total_gross"`
	TotalNet          float64     `json:"total_net"`
	TotalUSD          float64     `json:"total_usd"`
	EffectiveTakeRate float64     `json:"effective_take_rate"`
	FeeBreakdown      []FeeDetail `json:"fee_breakdown"`
}

// GoalProgress reports how uploaded earnings compare with a USD target.
type GoalProgress struct {
	TargetUSD        float64 `json:"target_usd"`
	EarnedUSD        float64 `json:"earned_usd"`
	RemainingUSD     float64 `json:"remaining_usd"`
	CurrentPercent   float64 `json:"current_percent"`
	DailyAverageUSD  float64 `json:"daily_average_usd"`
	DaysRemaining    int     `json:"days_remaining"`
	ProjectedPercent float64 `json:"projected_percent"`
	RequiredDailyUSD float64 `json:"required_daily_usd"`
	OnTrack          bool    `json:"on_track"`
	HasProjection    bool    `json:"has_projection"`
}
