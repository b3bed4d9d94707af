package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/triggerNode/BuxTax/src/models"
)

func TestDetectColumns_SummaryExport(t *testing.T) {
	headers := []string{"Date", "Gross Robux", "Net Robux", "USD Value", "Marketplace Fee", "Ad Spend",
		"Group Splits", "Affiliate Payouts", "Refunds", "Other Costs"}

	got := DetectColumns(headers)

	assert.Equal(t, models.ColumnMapping{
		Date:             "Date",
		GrossAmount:      "Gross Robux",
		NetAmount:        "Net Robux",
		MarketplaceFee:   "Marketplace Fee",
		AdSpend:          "Ad Spend",
		AffiliatePayouts: "Affiliate Payouts",
		Refunds:          "Refunds",
		OtherCosts:       "Other Costs",
	}, got)
	assert.False(t, IsTransactionFormat(got))
}

func TestDetectColumns_TransactionLog(t *testing.T) {
	got := DetectColumns([]string{"date", "DESCRIPTION", "Amount"})

	assert.Equal(t, "date", got.Date)
	assert.Equal(t, "DESCRIPTION", got.Description)
	assert.Equal(t, "Amount", got.Amount)
	assert.True(t, IsTransactionFormat(got))
}

func TestDetectColumns_TieBreaks(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    models.ColumnMapping
	}{
		{
			name:    "first header claims the field",
			headers: []string{"Type", "Description", "Day", "Date"},
			want:    models.ColumnMapping{Description: "Type", Date: "Day"},
		},
		{
			name:    "total needs a currency token to be gross",
			headers: []string{"Total", "Total R$"},
			want:    models.ColumnMapping{Amount: "Total", GrossAmount: "Total R$"},
		},
		{
			name:    "headers are trimmed",
			headers: []string{"  Period ", " Earnings (Robux)"},
			want:    models.ColumnMapping{Date: "Period", GrossAmount: "Earnings (Robux)"},
		},
		{
			name:    "nothing recognized",
			headers: []string{"foo", "bar", ""},
			want:    models.ColumnMapping{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectColumns(tt.headers))
		})
	}
}

func TestDetectColumns_Deterministic(t *testing.T) {
	headers := []string{"Month", "Revenue R$", "Payout Robux", "Platform Cut", "Ads Cost", "Share Payment",
		"Referral Payout", "Chargebacks", "Misc Fee", "Category", "Value"}

	first := DetectColumns(headers)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, DetectColumns(headers))
	}
	for _, field := range models.MappingFields {
		assert.NotEmpty(t, first.Get(field), "field %s should be detected", field)
	}
}

func TestValidateMapping(t *testing.T) {
	headers := []string{"Date", "Gross", "Fee", "Description", "Amount"}

	tests := []struct {
		name    string
		mapping models.ColumnMapping
		wantN   int
	}{
		{name: "valid summary", mapping: models.ColumnMapping{Date: "Date", GrossAmount: "Gross", MarketplaceFee: "Fee"}},
		{name: "valid transaction", mapping: models.ColumnMapping{Date: "Date", Description: "Description", Amount: "Amount"}},
		{name: "missing date and gross", mapping: models.ColumnMapping{MarketplaceFee: "Fee"}, wantN: 2},
		{name: "duplicate header", mapping: models.ColumnMapping{Date: "Date", GrossAmount: "Gross", NetAmount: "Gross"}, wantN: 1},
		{name: "unknown header", mapping: models.ColumnMapping{Date: "Date", GrossAmount: "Gross Robux"}, wantN: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := ValidateMapping(tt.mapping, headers)
			assert.Len(t, problems, tt.wantN, "problems: %v", problems)
		})
	}
}
