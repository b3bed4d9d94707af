package parsers

import (
	"github.com/shopspring/decimal"

	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/rates"
)

// dayTotals accumulates one calendar day in decimal so many small rows sum exactly.
type dayTotals struct {
	gross, marketplaceFee, adSpend, groupSplits, affiliatePayouts, refunds, otherCosts decimal.Decimal
}

func (d *dayTotals) add(category models.TransactionCategory, amount decimal.Decimal) {
	switch category {
	case models.CategorySale:
		if amount.IsPositive() {
			d.gross = d.gross.Add(amount)
		}
	case models.CategoryMarketplaceFee:
		d.marketplaceFee = d.marketplaceFee.Add(amount.Abs())
	case models.CategoryAdSpend:
		d.adSpend = d.adSpend.Add(amount.Abs())
	case models.CategoryGroupSplit:
		d.groupSplits = d.groupSplits.Add(amount.Abs())
	case models.CategoryAffiliateFee:
		d.affiliatePayouts = d.affiliatePayouts.Add(amount.Abs())
	case models.CategoryRefund:
		d.refunds = d.refunds.Add(amount.Abs())
	case models.CategoryOtherCost:
		d.otherCosts = d.otherCosts.Add(amount.Abs())
	}
}

func (d *dayTotals) net() decimal.Decimal {
	return d.gross.Sub(decimal.Sum(d.marketplaceFee, d.adSpend, d.groupSplits, d.affiliatePayouts, d.refunds, d.otherCosts))
}

// AggregateTransactions folds transaction rows into one PayoutRecord per calendar day, in
// the order each day was first seen. Sales add their positive amount to gross; every other
// category adds the magnitude of its amount to the matching cost bucket. Net is plain
// arithmetic and may be negative.
func AggregateTransactions(rows []models.TransactionRow, categorizer Categorizer, r rates.RateConstants) []models.PayoutRecord {
	byDate := make(map[string]*dayTotals)
	var order []string

	for _, row := range rows {
		day, ok := byDate[row.Date]
		if !ok {
			day = &dayTotals{}
			byDate[row.Date] = day
			order = append(order, row.Date)
		}
		day.add(categorizer.Categorize(row.Description), decimal.NewFromFloat(row.Amount))
	}

	records := make([]models.PayoutRecord, 0, len(order))
	for _, date := range order {
		day := byDate[date]
		net := day.net().InexactFloat64()
		records = append(records, models.PayoutRecord{
			Date:             date,
			GrossAmount:      day.gross.InexactFloat64(),
			NetAmount:        net,
			MarketplaceFee:   day.marketplaceFee.InexactFloat64(),
			AdSpend:          day.adSpend.InexactFloat64(),
			GroupSplits:      day.groupSplits.InexactFloat64(),
			AffiliatePayouts: day.affiliatePayouts.InexactFloat64(),
			Refunds:          day.refunds.InexactFloat64(),
			OtherCosts:       day.otherCosts.InexactFloat64(),
			USDValue:         r.ToUSD(net),
		})
	}
	return records
}
