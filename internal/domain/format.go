package domain

import (
	"math"
	"strconv"
	"strings"
)

func trimmed(s string) string { return strings.TrimSpace(s) }

// formatNumber renders whole values without a decimal part, so a year
// stored as 2010.0 prints as "2010".
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
