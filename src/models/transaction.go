package models

// TransactionRow is one line of a transaction-log CSV after field extraction.
type TransactionRow struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	Description string  `json:"description"`
	Amount      float64 `json:"amount"` // signed as found in the source
}

// TransactionCategory classifies a transaction description into a revenue or cost bucket.
type TransactionCategory string

const (
	CategorySale           TransactionCategory = "sale"
	CategoryMarketplaceFee TransactionCategory = "marketplaceFee"
	CategoryAdSpend        TransactionCategory = "adSpend"
	CategoryGroupSplit     TransactionCategory = "groupSplit"
	CategoryAffiliateFee   TransactionCategory = "affiliateFee"
	CategoryRefund         TransactionCategory = "refund"
	CategoryOtherCost      TransactionCategory = "otherCost"
)

// Valid reports whether c is one of the known categories.
func (c TransactionCategory) Valid() bool {
	switch c {
	case CategorySale, CategoryMarketplaceFee, CategoryAdSpend, CategoryGroupSplit,
		CategoryAffiliateFee, CategoryRefund, CategoryOtherCost:
		return true
	}
	return false
}
