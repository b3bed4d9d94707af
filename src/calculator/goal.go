package calculator

import (
	"math"

	"github.com/triggerNode/BuxTax/src/models"
)

// CalculateRequiredGross returns the smallest whole gross amount whose payout reaches
// targetUSD after the category's marketplace fee and the expected fixed costs.
// It returns 0 for a non-positive or non-finite target.
func (c *profitCalculatorImpl) CalculateRequiredGross(targetUSD float64, category models.UserCategory, expected models.CostInputs) (float64, error) {
	feeRate, err := c.feeRate(category)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(targetUSD) || math.IsInf(targetUSD, 0) || targetUSD <= 0 {
		return 0, nil
	}
	keep := 1 - feeRate
	if keep <= 0 {
		return 0, nil
	}

	requiredNet := targetUSD / c.rates.ExchangeRateUSDPerUnit
	fixedCosts := expected.Normalized().Total()
	return math.Ceil((requiredNet + fixedCosts) / keep), nil
}
