package calculator

import (
	"math"
	"strconv"
	"strings"

	"github.com/triggerNode/BuxTax/src/rates"
	"github.com/triggerNode/BuxTax/src/utils"
)

// MaxUnitsInput caps free-text amounts typed into the lite converter.
const MaxUnitsInput = 1_000_000_000

// UnitsToUSD converts units to USD at r's exchange rate, rounded to cents.
// Non-positive and non-finite amounts convert to 0.
func UnitsToUSD(r rates.RateConstants, units float64) float64 {
	if math.IsNaN(units) || math.IsInf(units, 0) || units <= 0 {
		return 0
	}
	return utils.RoundFloat(r.ToUSD(units), 2)
}

// ParseUnits keeps only the digits of input ("12,500 R$" -> 12500) and caps the result
// at MaxUnitsInput. Input without digits parses as 0.
func ParseUnits(input string) float64 {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, input)
	if digits == "" {
		return 0
	}
	if len(digits) > 10 {
		return MaxUnitsInput
	}
	n, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return math.Min(n, MaxUnitsInput)
}
