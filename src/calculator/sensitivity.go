package calculator

import (
	"math"

	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/utils"
)

const (
	MinSensitivityMultiplier = 0.5
	MaxSensitivityMultiplier = 2.0

	// changes smaller than this (in percent) are reported as no change
	sensitivityNoiseFloor = 0.1
)

// Sensitivity recalculates the scenario with gross, ad spend and other costs scaled by m
// and reports how payout and take rate move relative to the unscaled base.
func (c *profitCalculatorImpl) Sensitivity(grossAmount float64, category models.UserCategory, costs models.CostInputs, m models.SensitivityMultipliers) (models.SensitivityResult, error) {
	base, err := c.CalculateProfit(grossAmount, category, costs)
	if err != nil {
		return models.SensitivityResult{}, err
	}

	m = NormalizeMultipliers(m)
	adjustedCosts := costs.Normalized()
	adjustedCosts.AdSpend *= m.AdSpend
	adjustedCosts.OtherCosts *= m.OtherCosts

	adjusted, err := c.CalculateProfit(models.NonNegative(grossAmount)*m.Gross, category, adjustedCosts)
	if err != nil {
		return models.SensitivityResult{}, err
	}

	return models.SensitivityResult{
		Base:                  base,
		Adjusted:              adjusted,
		Multipliers:           m,
		PayoutChangePercent:   significantChange(base.USDPayout, adjusted.USDPayout),
		TakeRateChangePercent: significantChange(base.EffectiveTakeRatePercent, adjusted.EffectiveTakeRatePercent),
	}, nil
}

// NormalizeMultipliers replaces zero with 1 and clamps the rest to the slider range.
func NormalizeMultipliers(m models.SensitivityMultipliers) models.SensitivityMultipliers {
	return models.SensitivityMultipliers{
		Gross:      normalizeMultiplier(m.Gross),
		AdSpend:    normalizeMultiplier(m.AdSpend),
		OtherCosts: normalizeMultiplier(m.OtherCosts),
	}
}

func normalizeMultiplier(v float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return 1
	}
	return utils.Clamp(v, MinSensitivityMultiplier, MaxSensitivityMultiplier)
}

func significantChange(base, current float64) float64 {
	change := utils.PercentChange(base, current)
	if math.Abs(change) < sensitivityNoiseFloor {
		return 0
	}
	return utils.RoundFloat(change, 1)
}
