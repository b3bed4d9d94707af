package utils

import "math"

// RoundFloat rounds a float64 to a specified number of decimal places.
// Halves round away from zero.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// Clamp limits val to [lo, hi]. NaN maps to lo.
func Clamp(val, lo, hi float64) float64 {
	if math.IsNaN(val) || val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// PercentChange returns (current-base)/base*100, or 0 when base is 0.
func PercentChange(base, current float64) float64 {
	if base == 0 {
		return 0
	}
	return (current - base) / base * 100
}
