package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/rates"
)

func newTestCalculator() ProfitCalculator {
	return NewProfitCalculator(rates.Default())
}

func TestCalculateProfit_PrimaryCreatorNoCosts(t *testing.T) {
	result, err := newTestCalculator().CalculateProfit(10000, models.PrimaryCreator, models.CostInputs{})
	require.NoError(t, err)

	assert.Equal(t, 3000.0, result.Breakdown.MarketplaceFee)
	assert.Equal(t, 3000.0, result.TotalCosts)
	assert.Equal(t, 7000.0, result.NetAmount)
	assert.Equal(t, 26.58, result.USDPayout)
	assert.Equal(t, 30.0, result.EffectiveTakeRatePercent)
	assert.Equal(t, 10000.0, result.GrossAmount)
}

func TestCalculateProfit_WithCosts(t *testing.T) {
	costs := models.CostInputs{AdSpend: 500, GroupSplits: 250, AffiliatePayouts: 100, Refunds: 50, OtherCosts: 100}
	result, err := newTestCalculator().CalculateProfit(10000, models.PrimaryCreator, costs)
	require.NoError(t, err)

	assert.Equal(t, 4000.0, result.TotalCosts)
	assert.Equal(t, 6000.0, result.NetAmount)
	assert.Equal(t, 22.79, result.USDPayout)
	assert.Equal(t, 40.0, result.EffectiveTakeRatePercent)
	assert.Equal(t, 500.0, result.Breakdown.AdSpend)
	assert.Equal(t, 250.0, result.Breakdown.GroupSplits)
	assert.Equal(t, 100.0, result.Breakdown.AffiliatePayouts)
	assert.Equal(t, 50.0, result.Breakdown.Refunds)
	assert.Equal(t, 100.0, result.Breakdown.OtherCosts)
}

func TestCalculateProfit_FeeInvariant(t *testing.T) {
	calc := newTestCalculator()
	r := rates.Default()
	for _, category := range models.UserCategories {
		for _, gross := range []float64{0, 1, 99.5, 1234, 10000, 987654321} {
			result, err := calc.CalculateProfit(gross, category, models.CostInputs{AdSpend: gross * 3})
			require.NoError(t, err)
			assert.Equal(t, gross*r.MarketplaceFeeRates[category], result.Breakdown.MarketplaceFee, "category=%s gross=%v", category, gross)
		}
	}
}

func TestCalculateProfit_NetNeverNegative(t *testing.T) {
	calc := newTestCalculator()
	tests := []struct {
		name  string
		gross float64
		costs models.CostInputs
	}{
		{name: "costs exceed gross", gross: 100, costs: models.CostInputs{AdSpend: 500}},
		{name: "fee alone", gross: 100, costs: models.CostInputs{OtherCosts: 71}},
		{name: "zero gross with costs", gross: 0, costs: models.CostInputs{Refunds: 10}},
		{name: "negative gross", gross: -500},
		{name: "NaN gross", gross: math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.CalculateProfit(tt.gross, models.SecondaryCreator, tt.costs)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result.NetAmount, 0.0)
			assert.GreaterOrEqual(t, result.USDPayout, 0.0)
		})
	}
}

func TestCalculateProfit_TakeRateAboveHundred(t *testing.T) {
	result, err := newTestCalculator().CalculateProfit(1000, models.PrimaryCreator, models.CostInputs{AdSpend: 1000})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.NetAmount)
	assert.Equal(t, 130.0, result.EffectiveTakeRatePercent)
}

func TestCalculateProfit_ZeroGross(t *testing.T) {
	result, err := newTestCalculator().CalculateProfit(0, models.PrimaryCreator, models.CostInputs{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.EffectiveTakeRatePercent)
	assert.Equal(t, 0.0, result.USDPayout)
}

func TestCalculateProfit_NegativeCostsIgnored(t *testing.T) {
	result, err := newTestCalculator().CalculateProfit(10000, models.PrimaryCreator, models.CostInputs{AdSpend: -5000})
	require.NoError(t, err)
	assert.Equal(t, 7000.0, result.NetAmount)
	assert.Equal(t, 0.0, result.Breakdown.AdSpend)
}

func TestCalculateProfit_UnknownCategory(t *testing.T) {
	_, err := newTestCalculator().CalculateProfit(100, models.UserCategory("publisher"), models.CostInputs{})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCalculateProfit_InjectedRates(t *testing.T) {
	r := rates.Default()
	r.ExchangeRateUSDPerUnit = 0.01
	r.MarketplaceFeeRates[models.PrimaryCreator] = 0.5

	result, err := NewProfitCalculator(r).CalculateProfit(1000, models.PrimaryCreator, models.CostInputs{})
	require.NoError(t, err)
	assert.Equal(t, 500.0, result.NetAmount)
	assert.Equal(t, 5.0, result.USDPayout)
}

func TestCalculateRequiredGross_PrimaryHundredDollars(t *testing.T) {
	gross, err := newTestCalculator().CalculateRequiredGross(100, models.PrimaryCreator, models.CostInputs{})
	require.NoError(t, err)
	assert.Equal(t, 37619.0, gross)
}

func TestCalculateRequiredGross_FixedCosts(t *testing.T) {
	calc := newTestCalculator()
	withoutCosts, err := calc.CalculateRequiredGross(100, models.PrimaryCreator, models.CostInputs{})
	require.NoError(t, err)
	withCosts, err := calc.CalculateRequiredGross(100, models.PrimaryCreator, models.CostInputs{AdSpend: 700})
	require.NoError(t, err)

	assert.InDelta(t, withoutCosts+1000, withCosts, 1)
}

func TestCalculateRequiredGross_Degenerate(t *testing.T) {
	calc := newTestCalculator()
	for _, target := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		gross, err := calc.CalculateRequiredGross(target, models.SecondaryCreator, models.CostInputs{})
		require.NoError(t, err)
		assert.Equal(t, 0.0, gross, "target=%v", target)
	}

	r := rates.Default()
	r.MarketplaceFeeRates[models.PrimaryCreator] = 1
	gross, err := NewProfitCalculator(r).CalculateRequiredGross(100, models.PrimaryCreator, models.CostInputs{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, gross)

	_, err = calc.CalculateRequiredGross(100, models.UserCategory(""), models.CostInputs{})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCalculateRequiredGross_InverseRoundTrip(t *testing.T) {
	calc := newTestCalculator()
	for _, category := range models.UserCategories {
		for _, target := range []float64{1, 10, 26.58, 50, 100, 250, 1000, 12345.67} {
			gross, err := calc.CalculateRequiredGross(target, category, models.CostInputs{})
			require.NoError(t, err)
			assert.Equal(t, math.Ceil(gross), gross)

			result, err := calc.CalculateProfit(gross, category, models.CostInputs{})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result.USDPayout, target, "category=%s target=%v gross=%v", category, target, gross)
			assert.Less(t, result.USDPayout-target, 0.01)
		}
	}
}

func TestSensitivity(t *testing.T) {
	calc := newTestCalculator()
	costs := models.CostInputs{AdSpend: 1000}

	result, err := calc.Sensitivity(10000, models.PrimaryCreator, costs, models.SensitivityMultipliers{Gross: 1.5})
	require.NoError(t, err)

	assert.Equal(t, 22.79, result.Base.USDPayout)
	assert.Equal(t, 15000.0, result.Adjusted.GrossAmount)
	assert.Equal(t, 36.08, result.Adjusted.USDPayout)
	assert.Equal(t, models.SensitivityMultipliers{Gross: 1.5, AdSpend: 1, OtherCosts: 1}, result.Multipliers)
	assert.InDelta(t, 58.3, result.PayoutChangePercent, 0.001)
	assert.InDelta(t, -8.2, result.TakeRateChangePercent, 0.11)
}

func TestSensitivity_NoChange(t *testing.T) {
	result, err := newTestCalculator().Sensitivity(10000, models.SecondaryCreator, models.CostInputs{}, models.SensitivityMultipliers{})
	require.NoError(t, err)

	assert.Equal(t, result.Base, result.Adjusted)
	assert.Equal(t, 0.0, result.PayoutChangePercent)
	assert.Equal(t, 0.0, result.TakeRateChangePercent)
}

func TestSensitivity_ZeroBase(t *testing.T) {
	result, err := newTestCalculator().Sensitivity(0, models.PrimaryCreator, models.CostInputs{}, models.SensitivityMultipliers{Gross: 2})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.PayoutChangePercent)
}

func TestNormalizeMultipliers(t *testing.T) {
	m := NormalizeMultipliers(models.SensitivityMultipliers{Gross: 5, AdSpend: 0.1, OtherCosts: math.NaN()})
	assert.Equal(t, models.SensitivityMultipliers{Gross: 2, AdSpend: 0.5, OtherCosts: 1}, m)
}

func TestSensitivity_UnknownCategory(t *testing.T) {
	_, err := newTestCalculator().Sensitivity(100, models.UserCategory("x"), models.CostInputs{}, models.SensitivityMultipliers{})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
