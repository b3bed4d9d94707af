package models

// Semantic field names a CSV column can be mapped to.
const (
	FieldDate             = "date"
	FieldGrossAmount      = "grossAmount"
	FieldNetAmount        = "netAmount"
	FieldMarketplaceFee   = "marketplaceFee"
	FieldAdSpend          = "adSpend"
	FieldGroupSplits      = "groupSplits"
	FieldAffiliatePayouts = "affiliatePayouts"
	FieldRefunds          = "refunds"
	FieldOtherCosts       = "otherCosts"
	FieldDescription      = "description"
	FieldAmount           = "amount"
)

// MappingFields lists every mappable field in detection priority order.
var MappingFields = []string{
	FieldDate,
	FieldGrossAmount,
	FieldNetAmount,
	FieldMarketplaceFee,
	FieldAdSpend,
	FieldGroupSplits,
	FieldAffiliatePayouts,
	FieldRefunds,
	FieldOtherCosts,
	FieldDescription,
	FieldAmount,
}

// ColumnMapping maps semantic fields to the literal header found in an uploaded file.
// An empty string means the field is not mapped.
type ColumnMapping struct {
	Date             string `json:"date,omitempty"`
	GrossAmount      string `json:"gross_amount,omitempty"`
	NetAmount        string `json:"net_amount,omitempty"`
	MarketplaceFee   string `json:"marketplace_fee,omitempty"`
	AdSpend          string `json:"ad_spend,omitempty"`
	GroupSplits      string `json:"group_splits,omitempty"`
	AffiliatePayouts string `json:"affiliate_payouts,omitempty"`
	Refunds          string `json:"refunds,omitempty"`
	OtherCosts       string `json:"other_costs,omitempty"`
	Description      string `json:"description,omitempty"`
	Amount           string `json:"amount,omitempty"`
}

func (m *ColumnMapping) slot(field string) *string {
	switch field {
	case FieldDate:
		return &m.Date
	case FieldGrossAmount:
		return &m.GrossAmount
	case FieldNetAmount:
		return &m.NetAmount
	case FieldMarketplaceFee:
		return &m.MarketplaceFee
	case FieldAdSpend:
		return &m.AdSpend
	case FieldGroupSplits:
		return &m.GroupSplits
	case FieldAffiliatePayouts:
		return &m.AffiliatePayouts
	case FieldRefunds:
		return &m.Refunds
	case FieldOtherCosts:
		return &m.OtherCosts
	case FieldDescription:
		return &m.Description
	case FieldAmount:
		return &m.Amount
	}
	return nil
}

// Get returns the header mapped to field, or "" when unmapped or unknown.
func (m ColumnMapping) Get(field string) string {
	if p := m.slot(field); p != nil {
		return *p
	}
	return ""
}

// Set assigns header to field. Unknown fields are ignored.
func (m *ColumnMapping) Set(field, header string) {
	if p := m.slot(field); p != nil {
		*p = header
	}
}

// IsEmpty reports whether no field is mapped.
func (m ColumnMapping) IsEmpty() bool {
	for _, f := range MappingFields {
		if m.Get(f) != "" {
			return false
		}
	}
	return true
}
