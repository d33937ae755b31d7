package costing

import "math"

// Round2 rounds half away from zero to two decimal places, matching the
// rounding the finance documents display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AmountWithPercentage adds a percentage (typically GST) on top of a base
// amount. The zero-percent branch intentionally returns the value unrounded:
// only the adjusted branch rounds, so an untaxed component passes through
// exactly as computed. Callers that need a rounded figure round the final
// aggregate instead.
func AmountWithPercentage(value, percent float64) float64 {
	if percent > 0 {
		return Round2(value + value*percent/100)
	}
	return value
}

// GSTAmount returns just the tax portion for a base amount.
func GSTAmount(value, percent float64) float64 {
	if percent > 0 {
		return Round2(value * percent / 100)
	}
	return 0
}
