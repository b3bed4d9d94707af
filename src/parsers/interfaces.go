package parsers

import (
	"io"

	"github.com/triggerNode/BuxTax/src/models"
)

// CSVParser turns an uploaded payout CSV into normalized records.
// Parse never fails as a whole; problems are reported in ParseResult.Errors.
type CSVParser interface {
	Parse(file io.Reader, mapping *models.ColumnMapping) *models.ParseResult
	ParseString(csvText string, mapping *models.ColumnMapping) *models.ParseResult
}

// Categorizer classifies a transaction description into a revenue or cost bucket.
type Categorizer interface {
	Categorize(description string) models.TransactionCategory
}
