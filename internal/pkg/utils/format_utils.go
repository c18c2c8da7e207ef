package utils

import (
	"math"
	"strconv"
)

// FormatHealthFactor renders a health factor for display. An infinite value
// (no debt) is shown as the infinity glyph rather than a large number.
func FormatHealthFactor(hf float64) string {
	if math.IsInf(hf, 1) {
		return "∞"
	}
	return strconv.FormatFloat(hf, 'f', 2, 64)
}

// FormatPercent renders a percentage value with two decimal places.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
