package adjustment

import "math"

// ApplyCap limits amount to ±maxFraction of salePrice and reports whether it
// had to be limited. A non-positive sale price leaves the amount uncapped; a
// zero fraction allows no adjustment at all.
func ApplyCap(amount, maxFraction, salePrice float64) (float64, bool) {
	if salePrice <= 0 {
		return amount, false
	}
	limit := math.Max(0, maxFraction) * salePrice
	if math.Abs(amount) <= limit {
		return amount, false
	}
	return math.Copysign(limit, amount), true
}
