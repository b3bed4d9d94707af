package models

import (
	"fmt"
	"math"
	"strings"
)

// UserCategory selects which marketplace fee rate applies to a creator.
type UserCategory string

const (
	// PrimaryCreator is an experience (game) developer.
	PrimaryCreator UserCategory = "gameDev"
	// SecondaryCreator is a UGC (avatar item) creator.
	SecondaryCreator UserCategory = "ugcCreator"
)

// UserCategories lists every supported category in display order.
var UserCategories = []UserCategory{PrimaryCreator, SecondaryCreator}

// ParseUserCategory maps a wire or CLI name onto a UserCategory.
func ParseUserCategory(s string) (UserCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gamedev", "game_dev", "primary", "primarycreator":
		return PrimaryCreator, nil
	case "ugccreator", "ugc_creator", "ugc", "secondary", "secondarycreator":
		return SecondaryCreator, nil
	default:
		return "", fmt.Errorf("unknown user category %q", s)
	}
}

// CostInputs holds the itemized, non-marketplace costs deducted from gross earnings.
// A zero field means the cost is absent.
type CostInputs struct {
	AdSpend          float64 `json:"ad_spend"`
	GroupSplits      float64 `json:"group_splits"`
	AffiliatePayouts float64 `json:"affiliate_payouts"`
	Refunds          float64 `json:"refunds"`
	OtherCosts       float64 `json:"other_costs"`
}

// Normalized returns a copy with negative, NaN and infinite values replaced by 0.
func (c CostInputs) Normalized() CostInputs {
	return CostInputs{
		AdSpend:          NonNegative(c.AdSpend),
		GroupSplits:      NonNegative(c.GroupSplits),
		AffiliatePayouts: NonNegative(c.AffiliatePayouts),
		Refunds:          NonNegative(c.Refunds),
		OtherCosts:       NonNegative(c.OtherCosts),
	}
}

// Total sums all cost fields.
func (c CostInputs) Total() float64 {
	return c.AdSpend + c.GroupSplits + c.AffiliatePayouts + c.Refunds + c.OtherCosts
}

// NonNegative clamps v to [0, +Inf) and maps NaN and Inf to 0.
func NonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
