package currency

import (
	"fmt"
	"math"
	"strings"
)

var symbols = map[string]string{
	"USD": "$",
	"MMK": "MMK ",
}

// Format renders an amount with its currency symbol and comma grouping:
// Format(1234567.5, "USD") == "$1,234,567.50".
func Format(amount float64, code string) string {
	sym, ok := symbols[code]
	if !ok {
		sym = code + " "
	}
	if amount < 0 {
		return "-" + sym + group(-amount)
	}
	return sym + group(amount)
}

// FormatCompact abbreviates large amounts for KPI cards: "$1.2M", "$45.3K".
// Values under a thousand render like Format.
func FormatCompact(amount float64, code string) string {
	sym, ok := symbols[code]
	if !ok {
		sym = code + " "
	}
	sign := ""
	v := amount
	if v < 0 {
		sign = "-"
		v = -v
	}

	switch {
	case v >= 1e9:
		return fmt.Sprintf("%s%s%.1fB", sign, sym, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s%s%.1fM", sign, sym, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s%s%.1fK", sign, sym, v/1e3)
	default:
		return sign + sym + group(v)
	}
}

// group formats a non-negative amount with thousands separators and two
// decimal places.
func group(v float64) string {
	whole := int64(math.Floor(v))
	frac := int64(math.Round((v - float64(whole)) * 100))
	if frac == 100 {
		whole++
		frac = 0
	}

	digits := fmt.Sprintf("%d", whole)
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)

	return fmt.Sprintf("%s.%02d", strings.Join(parts, ","), frac)
}
