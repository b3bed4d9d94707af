package calculator

import (
	"math"

	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/utils"
)

// CalculateProfit deducts the marketplace fee and the itemized costs from grossAmount.
// Negative or non-finite gross is treated as 0. Net is never negative; when costs exceed
// gross the take rate goes above 100%.
func (c *profitCalculatorImpl) CalculateProfit(grossAmount float64, category models.UserCategory, costs models.CostInputs) (models.CalculationResult, error) {
	feeRate, err := c.feeRate(category)
	if err != nil {
		return models.CalculationResult{}, err
	}

	gross := models.NonNegative(grossAmount)
	costs = costs.Normalized()

	marketplaceFee := gross * feeRate
	totalCosts := marketplaceFee + costs.Total()
	net := math.Max(0, gross-totalCosts)

	takeRate := 0.0
	if gross > 0 {
		takeRate = utils.RoundFloat(totalCosts/gross*100, 1)
	}

	return models.CalculationResult{
		GrossAmount:              gross,
		TotalCosts:               totalCosts,
		NetAmount:                math.Round(net),
		USDPayout:                utils.RoundFloat(c.rates.ToUSD(net), 2),
		EffectiveTakeRatePercent: takeRate,
		Breakdown: models.CostBreakdown{
			GrossAmount:      gross,
			AdSpend:          costs.AdSpend,
			GroupSplits:      costs.GroupSplits,
			AffiliatePayouts: costs.AffiliatePayouts,
			Refunds:          costs.Refunds,
			OtherCosts:       costs.OtherCosts,
			MarketplaceFee:   marketplaceFee,
		},
	}, nil
}
