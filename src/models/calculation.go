package models

// CostBreakdown echoes every component that went into a calculation.
type CostBreakdown struct {
	GrossAmount      float64 `json:"gross_amount"`
	AdSpend          float64 `json:"ad_spend"`
	GroupSplits      float64 `json:"group_splits"`
	AffiliatePayouts float64 `json:"affiliate_payouts"`
	Refunds          float64 `json:"refunds"`
	OtherCosts       float64 `json:"other_costs"`
	MarketplaceFee   float64 `json:"marketplace_fee"`
}

// CalculationResult is the output of a profit calculation. It is derived, never stored.
type CalculationResult struct {
	GrossAmount              float64       `json:"gross_amount"`
	TotalCosts               float64       `json:"total_costs"`
	NetAmount                float64       `json:"net_amount"`
	USDPayout                float64       `json:"usd_payout"`
	EffectiveTakeRatePercent float64       `json:"effective_take_rate_percent"`
	Breakdown                CostBreakdown `json:"breakdown"`
}

// SensitivityMultipliers scale the inputs of a what-if scenario. Zero means "unchanged".
type SensitivityMultipliers struct {
	Gross      float64 `json:"gross"`
	AdSpend    float64 `json:"ad_spend"`
	OtherCosts float64 `json:"other_costs"`
}

// SensitivityResult compares an adjusted scenario against its base.
type SensitivityResult struct {
	Base                  CalculationResult      `json:"base"`
	Adjusted              CalculationResult      `json:"adjusted"`
	Multipliers           SensitivityMultipliers `json:"multipliers"`
	PayoutChangePercent   float64                `json:"payout_change_percent"`
	TakeRateChangePercent float64                `json:"take_rate_change_percent"`
}
