package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/security/validation"
)

// ExportHeaders is the column order of a payout export.
var ExportHeaders = []string{
	"Date",
	"Gross Robux",
	"Net Robux",
	"USD Value",
	"Marketplace Fee",
	"Ad Spend",
	"Group Splits",
	"Affiliate Payouts",
	"Refunds",
	"Other Costs",
}

// ExportMapping returns the mapping that reads an ExportCSV file back in.
func ExportMapping() models.ColumnMapping {
	return models.ColumnMapping{
		Date:             "Date",
		GrossAmount:      "Gross Robux",
		NetAmount:        "Net Robux",
		MarketplaceFee:   "Marketplace Fee",
		AdSpend:          "Ad Spend",
		GroupSplits:      "Group Splits",
		AffiliatePayouts: "Affiliate Payouts",
		Refunds:          "Refunds",
		OtherCosts:       "Other Costs",
	}
}

// ExportCSV writes records in ExportHeaders order. Amounts keep full precision so the file
// parses back to the same records; the USD column is rounded to cents for display.
func ExportCSV(w io.Writer, records []models.PayoutRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeaders); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Date,
			formatAmount(rec.GrossAmount),
			formatAmount(rec.NetAmount),
			fmt.Sprintf("$%.2f", rec.USDValue),
			formatAmount(rec.MarketplaceFee),
			formatAmount(rec.AdSpend),
			formatAmount(rec.GroupSplits),
			formatAmount(rec.AffiliatePayouts),
			formatAmount(rec.Refunds),
			formatAmount(rec.OtherCosts),
		}
		for i := range row {
			row[i] = validation.SanitizeCSVCell(row[i])
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", rec.Date, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
