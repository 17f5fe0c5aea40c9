// Package format renders numbers for human-readable output.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Number returns value with thousands separators and the given number of
// decimals (e.g., "-1,234.5").
func Number(value float64, decimals int) string {
	sign := ""
	if value < 0 && math.Abs(value) >= 0.5*math.Pow(10, -float64(decimals)) {
		sign = "-"
	}
	return sign + formatPositive(math.Abs(value), decimals)
}

// Seconds returns a duration in whole or fractional seconds (e.g., "96 s", "3.5 s").
func Seconds(value float64) string {
	if value == math.Trunc(value) {
		return Number(value, 0) + " s"
	}
	return Number(value, 1) + " s"
}

// SignedPercent returns a whole percentage with an explicit sign for
// non-zero values (e.g., "+13%", "-5%", "0%").
func SignedPercent(value int) string {
	if value > 0 {
		return fmt.Sprintf("+%d%%", value)
	}
	return fmt.Sprintf("%d%%", value)
}

func formatPositive(value float64, decimals int) string {
	formatted := fmt.Sprintf("%.*f", decimals, value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return intPart + "." + parts[1]
	}
	return intPart
}
