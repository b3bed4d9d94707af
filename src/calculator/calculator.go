// Package calculator converts gross in-game earnings into an estimated USD payout and
// inverts that conversion for goal seeking.
package calculator

import (
	"errors"
	"fmt"

	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/rates"
)

var ErrUnknownCategory = errors.New("unknown user category")

// ProfitCalculator runs the profit, goal-seeking and what-if calculations against a fixed
// set of rate constants.
type ProfitCalculator interface {
	CalculateProfit(grossAmount float64, category models.UserCategory, costs models.CostInputs) (models.CalculationResult, error)
	CalculateRequiredGross(targetUSD float64, category models.UserCategory, expected models.CostInputs) (float64, error)
	Sensitivity(grossAmount float64, category models.UserCategory, costs models.CostInputs, m models.SensitivityMultipliers) (models.SensitivityResult, error)
	Rates() rates.RateConstants
}

type profitCalculatorImpl struct {
	rates rates.RateConstants
}

func NewProfitCalculator(r rates.RateConstants) ProfitCalculator {
	return &profitCalculatorImpl{rates: r}
}

func (c *profitCalculatorImpl) Rates() rates.RateConstants {
	return c.rates
}

func (c *profitCalculatorImpl) feeRate(category models.UserCategory) (float64, error) {
	rate, ok := c.rates.MarketplaceFeeRates[category]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return rate, nil
}
