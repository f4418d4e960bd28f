// Package prediction implements the weighted statistical race scorer.
package prediction

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Round rounds v half away from zero to the given number of decimal places
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// NormalizeProbability ensures probability in [0,1]
func NormalizeProbability(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// SafeDivisor substitutes 1 for a zero divisor
func SafeDivisor(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// JoinPick formats up to the first three positions as an "a-b-c" pick
func JoinPick(positions []int) string {
	n := len(positions)
	if n > 3 {
		n = 3
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = strconv.Itoa(positions[i])
	}
	return strings.Join(parts, "-")
}
