package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/triggerNode/BuxTax/src/models"
)

type columnPattern struct {
	field   string
	pattern *regexp.Regexp
}

// columnPatterns is evaluated top to bottom for every header; the order is the tie-break.
var columnPatterns = []columnPattern{
	{models.FieldDate, regexp.MustCompile(`(?i)^(date|time|period|day|month)`)},
	{models.FieldGrossAmount, regexp.MustCompile(`(?i)^(gross|total|revenue|earnings|income).*(robux|r\$)`)},
	{models.FieldNetAmount, regexp.MustCompile(`(?i)^(net|final|payout).*(robux|r\$)`)},
	{models.FieldMarketplaceFee, regexp.MustCompile(`(?i)^(marketplace|platform|roblox).*(fee|cut|commission)`)},
	{models.FieldAdSpend, regexp.MustCompile(`(?i)^(ad|advertising|ads).*(spend|cost|expense)`)},
	{models.FieldGroupSplits, regexp.MustCompile(`(?i)^(group|split|share).*(payout|payment)`)},
	{models.FieldAffiliatePayouts, regexp.MustCompile(`(?i)^(affiliate|referral).*(payout|payment)`)},
	{models.FieldRefunds, regexp.MustCompile(`(?i)^(refund|chargeback|return)`)},
	{models.FieldOtherCosts, regexp.MustCompile(`(?i)^(other|misc|additional).*(cost|expense|fee)`)},
	{models.FieldDescription, regexp.MustCompile(`(?i)^(description|type|category|transaction)`)},
	{models.FieldAmount, regexp.MustCompile(`(?i)^(amount|value|sum|total)$`)},
}

// DetectColumns guesses a ColumnMapping from the header row. Headers are visited in file
// order and each one is given to the first pattern that matches it and whose field is still
// free. An empty mapping means nothing was recognized.
func DetectColumns(headers []string) models.ColumnMapping {
	var mapping models.ColumnMapping
	claimed := make(map[string]bool, len(columnPatterns))

	for _, header := range headers {
		name := strings.TrimSpace(header)
		if name == "" {
			continue
		}
		for _, cp := range columnPatterns {
			if claimed[cp.field] || !cp.pattern.MatchString(name) {
				continue
			}
			mapping.Set(cp.field, name)
			claimed[cp.field] = true
			break
		}
	}
	return mapping
}

// IsTransactionFormat reports whether m describes a one-row-per-transaction log
// (date, description and signed amount) rather than a per-period summary.
func IsTransactionFormat(m models.ColumnMapping) bool {
	return m.Date != "" && m.Description != "" && m.Amount != ""
}

// ValidateMapping checks a user-confirmed mapping against the file's headers and returns
// one message per problem. A nil result means the mapping is usable.
func ValidateMapping(m models.ColumnMapping, headers []string) []string {
	var problems []string

	if !IsTransactionFormat(m) {
		if m.Date == "" {
			problems = append(problems, "Date column is required")
		}
		if m.GrossAmount == "" {
			problems = append(problems, "Gross amount column is required")
		}
	}

	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[strings.TrimSpace(h)] = true
	}

	usedBy := make(map[string]string)
	for _, field := range models.MappingFields {
		header := m.Get(field)
		if header == "" {
			continue
		}
		if !known[header] {
			problems = append(problems, fmt.Sprintf("Column '%s' mapped to %s does not exist in the file", header, field))
		}
		if other, dup := usedBy[header]; dup {
			problems = append(problems, fmt.Sprintf("Column '%s' is mapped to both %s and %s", header, other, field))
			continue
		}
		usedBy[header] = field
	}
	return problems
}
