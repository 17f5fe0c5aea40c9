// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/signal-timing/pkg/constants"
	"gonum.org/v1/gonum/stat"
)

// RoundHalfUp rounds to the nearest integer with halves rounded toward
// positive infinity, so -2.5 becomes -2 and 2.5 becomes 3.
func RoundHalfUp(val float64) float64 {
	return math.Floor(val + 0.5)
}

// Round rounds a value half-up to the given number of decimal digits.
func Round(val float64, digits int) float64 {
	factor := math.Pow(10, float64(digits))
	return RoundHalfUp(val*factor) / factor
}

// RoundInt rounds half-up and converts to int.
func RoundInt(val float64) int {
	return int(RoundHalfUp(val))
}

// Clamp bounds val to [lo, hi]. When lo > hi the upper bound wins.
func Clamp(val, lo, hi float64) float64 {
	return Min(Max(val, lo), hi)
}

// ClampInt bounds an int to [lo, hi].
func ClampInt(val, lo, hi int) int {
	if val < lo {
		val = lo
	}
	if val > hi {
		val = hi
	}
	return val
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// PercentChange returns the whole-percent change from before to after.
// Reduction metrics are positive when after < before, increase metrics when
// after > before. A zero before value yields 0.
func PercentChange(before, after float64, reduction bool) int {
	if before == 0 {
		return 0
	}
	ratio := after / before
	raw := (ratio - 1) * constants.PercentageMultiplier
	if reduction {
		raw = (1 - ratio) * constants.PercentageMultiplier
	}
	return RoundInt(raw)
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// CoefficientOfVariation returns population standard deviation over mean.
// Empty input and a zero mean both yield 0.
func CoefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
