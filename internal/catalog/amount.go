package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDisplayAmount converts a display string such as "$1,234.50" to a number
// by dropping every character that is not a digit or a decimal point. The
// second return is false when nothing parseable remains, in which case the
// value is zero.
func ParseDisplayAmount(s string) (float64, bool) {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}

	f, _ := d.Float64()
	return f, true
}

// RaisePercentage derives the "150%" style progress string from raised and
// target display amounts. It returns "0%" when the target is missing or zero.
func RaisePercentage(raised, target string) string {
	r, ok := ParseDisplayAmount(raised)
	if !ok {
		return "0%"
	}
	t, ok := ParseDisplayAmount(target)
	if !ok || t == 0 {
		return "0%"
	}

	pct := decimal.NewFromFloat(r).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromFloat(t)).
		Round(0)
	return pct.String() + "%"
}
