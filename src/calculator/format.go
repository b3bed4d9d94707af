package calculator

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatUSD renders v as "$1,234.56". Negative values render as "-$1,234.56".
func FormatUSD(v float64) string {
	cents := math.Round(v * 100)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", cents/100)
}

// FormatUnits renders v rounded to whole units as "1,235 R$".
func FormatUnits(v float64) string {
	return humanize.Comma(int64(math.Round(v))) + " R$"
}

// FormatPercent renders v with one decimal, e.g. "30.0%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
