package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PayoutRecord is one normalized period (a CSV row, or one aggregated calendar day) of payout data.
type PayoutRecord struct {
	Date             string  `json:"date"` // YYYY-MM-DD
	GrossAmount      float64 `json:"gross_amount"`
	NetAmount        float64 `json:"net_amount"`
	MarketplaceFee   float64 `json:"marketplace_fee"`
	AdSpend          float64 `json:"ad_spend"`
	GroupSplits      float64 `json:"group_splits"`
	AffiliatePayouts float64 `json:"affiliate_payouts"`
	Refunds          float64 `json:"refunds"`
	OtherCosts       float64 `json:"other_costs"`
	USDValue         float64 `json:"usd_value"`
}

// CostsTotal sums the marketplace fee and every itemized cost of the record.
func (p PayoutRecord) CostsTotal() float64 {
	return p.costs().InexactFloat64()
}

// ComputedNet is gross minus every cost, summed in decimal so offsetting amounts net to
// exactly zero.
func (p PayoutRecord) ComputedNet() decimal.Decimal {
	return decimal.NewFromFloat(p.GrossAmount).Sub(p.costs())
}

func (p PayoutRecord) costs() decimal.Decimal {
	return decimal.Sum(
		decimal.NewFromFloat(p.MarketplaceFee),
		decimal.NewFromFloat(p.AdSpend),
		decimal.NewFromFloat(p.GroupSplits),
		decimal.NewFromFloat(p.AffiliatePayouts),
		decimal.NewFromFloat(p.Refunds),
		decimal.NewFromFloat(p.OtherCosts),
	)
}

// CSV layouts recognized by the parser.
const (
	FormatSummary     = "summary"
	FormatTransaction = "transaction"
)

// DateRange is the inclusive span of accepted records. Both ends are empty when nothing was accepted.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ParseSummary describes the outcome of a parse.
type ParseSummary struct {
	TotalRows int       `json:"total_rows"`
	ValidRows int       `json:"valid_rows"`
	DateRange DateRange `json:"date_range"`
}

// ParseResult is what the CSV pipeline hands back. Row-level problems are collected in Errors.
type ParseResult struct {
	Data    []PayoutRecord `json:"data"`
	Errors  []string       `json:"errors"`
	Summary ParseSummary   `json:"summary"`
	Mapping ColumnMapping  `json:"mapping"`
	Format  string         `json:"format"`
	Headers []string       `json:"headers"`
}

// Message renders the count-style notice shown after an upload.
func (r *ParseResult) Message() string {
	if len(r.Errors) > 0 {
		return fmt.Sprintf("%d rows had issues, %d processed successfully", len(r.Errors), len(r.Data))
	}
	return fmt.Sprintf("Processed %d rows of payout data", len(r.Data))
}
