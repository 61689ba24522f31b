package pax

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatTime renders seconds with exactly three decimals, rounding half away
// from zero on the decimal value of seconds (0.9995 renders as "1.000").
func FormatTime(seconds float64) (string, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 1) {
		return "", &RangeError{Value: seconds, Err: ErrNonFiniteTime}
	}
	if seconds < 0 {
		return "", &RangeError{Value: seconds, Err: ErrNegativeTime}
	}
	return decimal.NewFromFloat(seconds).StringFixed(3), nil
}

// FormatDifference renders a signed time delta with three decimals, with a
// leading "+" when positive. The sign follows the rounded value, so a delta
// that rounds to zero prints as "0.000".
func FormatDifference(delta float64) string {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return strconv.FormatFloat(delta, 'f', 3, 64)
	}
	d := decimal.NewFromFloat(delta).Round(3)
	if d.IsPositive() {
		return "+" + d.StringFixed(3)
	}
	return d.StringFixed(3)
}
