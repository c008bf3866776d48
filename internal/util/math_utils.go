package util

import "math"

// Ratio returns part/total, or 0 when total is not positive.
func Ratio(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total)
}

// RoundPercent returns round(100*part/total), or 0 when total is not positive.
func RoundPercent(part, total int) int {
	return int(math.Round(100 * Ratio(part, total)))
}
