package pax

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Tried in order; each must match the whole trimmed input.
var (
	minutesPattern = regexp.MustCompile(`^(\d+):(\d{1,2})\.(\d{1,3})$`)
	hoursPattern   = regexp.MustCompile(`^(\d+):(\d{1,2}):(\d{1,2})\.(\d{1,3})$`)
	secondsPattern = regexp.MustCompile(`^(\d+)\.(\d{1,3})$`)
	wholePattern   = regexp.MustCompile(`^(\d+)$`)
)

// ParseTime converts a time string into seconds.
func ParseTime(input string) (float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, &FormatError{Input: input, Err: ErrEmptyTime}
	}

	var hours, minutes, seconds, millis string
	if m := minutesPattern.FindStringSubmatch(s); m != nil {
		minutes, seconds, millis = m[1], m[2], m[3]
	} else if m := hoursPattern.FindStringSubmatch(s); m != nil {
		hours, minutes, seconds, millis = m[1], m[2], m[3], m[4]
	} else if m := secondsPattern.FindStringSubmatch(s); m != nil {
		seconds, millis = m[1], m[2]
	} else if m := wholePattern.FindStringSubmatch(s); m != nil {
		seconds = m[1]
	} else {
		return 0, &FormatError{Input: input, Err: ErrInvalidTimeFormat}
	}

	total := decimal.Zero
	for _, part := range []struct {
		digits string
		scale  int64
	}{
		{hours, 3600},
		{minutes, 60},
		{seconds, 1},
	} {
		if part.digits == "" {
			continue
		}
		total = total.Add(digitsValue(part.digits).Mul(decimal.NewFromInt(part.scale)))
	}
	if millis != "" {
		// ".1" is 100 ms, not 1 ms.
		ms := millis + strings.Repeat("0", 3-len(millis))
		total = total.Add(digitsValue(ms).Shift(-3))
	}

	f, _ := total.Float64()
	return f, nil
}

// digitsValue is only called with strings the patterns above matched as \d+.
func digitsValue(digits string) decimal.Decimal {
	return decimal.RequireFromString(digits)
}
