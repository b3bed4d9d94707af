package processors

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/rates"
	"github.com/triggerNode/BuxTax/src/utils"
)

var ErrInvalidWindow = errors.New("invalid pulse window")

type feeCategory struct {
	category string
	label    string
	amount   func(models.PayoutRecord) float64
}

var feeCategories = []feeCategory{
	{models.FieldMarketplaceFee, "Marketplace Fee", func(r models.PayoutRecord) float64 { return r.MarketplaceFee }},
	{models.FieldAdSpend, "Ad Spend", func(r models.PayoutRecord) float64 { return r.AdSpend }},
	{models.FieldGroupSplits, "Group Splits", func(r models.PayoutRecord) float64 { return r.GroupSplits }},
	{models.FieldAffiliatePayouts, "Affiliate Payouts", func(r models.PayoutRecord) float64 { return r.AffiliatePayouts }},
	{models.FieldRefunds, "Refunds", func(r models.PayoutRecord) float64 { return r.Refunds }},
	{models.FieldOtherCosts, "Other Costs", func(r models.PayoutRecord) float64 { return r.OtherCosts }},
}

type pulseProcessorImpl struct {
	rates rates.RateConstants
}

func NewPulseProcessor(r rates.RateConstants) PulseProcessor {
	return &pulseProcessorImpl{rates: r}
}

// Summarize totals the records that fall in window ("all", "30d" or "90d", empty means all)
// relative to now, and breaks the costs down per category. Categories with no cost are left out.
func (p *pulseProcessorImpl) Summarize(records []models.PayoutRecord, window string, now time.Time) (models.PulseSummary, error) {
	if window == "" {
		window = WindowAll
	}
	cutoff, err := windowCutoff(window, now)
	if err != nil {
		return models.PulseSummary{}, err
	}

	summary := models.PulseSummary{Window: window, FeeBreakdown: []models.FeeDetail{}}
	gross, net, usd := decimal.Zero, decimal.Zero, decimal.Zero
	costs := make([]decimal.Decimal, len(feeCategories))

	for _, rec := range records {
		if cutoff != "" && rec.Date < cutoff {
			continue
		}
		summary.Records++
		if summary.DateRange.Start == "" || rec.Date < summary.DateRange.Start {
			summary.DateRange.Start = rec.Date
		}
		if rec.Date > summary.DateRange.End {
			summary.DateRange.End = rec.Date
		}

		gross = gross.Add(decimal.NewFromFloat(rec.GrossAmount))
		net = net.Add(decimal.NewFromFloat(rec.NetAmount))
		usd = usd.Add(decimal.NewFromFloat(rec.USDValue))
		for i, fc := range feeCategories {
			costs[i] = costs[i].Add(decimal.NewFromFloat(fc.amount(rec)))
		}
	}

	summary.TotalGross = gross.InexactFloat64()
	summary.TotalNet = net.InexactFloat64()
	summary.TotalUSD = usd.Round(2).InexactFloat64()
	if gross.IsPositive() {
		summary.EffectiveTakeRate = percentOf(gross.Sub(net), gross)
	}

	rate := decimal.NewFromFloat(p.rates.ExchangeRateUSDPerUnit)
	for i, fc := range feeCategories {
		if !costs[i].IsPositive() {
			continue
		}
		detail := models.FeeDetail{
			Category:   fc.category,
			Label:      fc.label,
			TotalUnits: costs[i].InexactFloat64(),
			TotalUSD:   costs[i].Mul(rate).Round(2).InexactFloat64(),
		}
		if gross.IsPositive() {
			detail.Percentage = percentOf(costs[i], gross)
		}
		summary.FeeBreakdown = append(summary.FeeBreakdown, detail)
	}
	return summary, nil
}

// windowCutoff returns the first day (YYYY-MM-DD) inside the window, or "" for all records.
func windowCutoff(window string, now time.Time) (string, error) {
	var days int
	switch window {
	case WindowAll:
		return "", nil
	case Window30Days:
		days = 30
	case Window90Days:
		days = 90
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidWindow, window)
	}
	return now.UTC().AddDate(0, 0, -days).Format(utils.DateFormat), nil
}

// percentOf returns part/whole*100 rounded to one decimal.
func percentOf(part, whole decimal.Decimal) float64 {
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
}
