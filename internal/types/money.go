// README: Monetary rounding helpers; all cost fields are BRL with cent precision.
package types

import "math"

// RoundCents rounds a monetary amount to cent precision. Every derived
// cost field goes through this at each step so that component sums and
// totals agree within 0.01.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
