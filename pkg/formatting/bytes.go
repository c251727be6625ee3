// Package formatting parses and prints human-readable byte sizes such as
// the configured request body limit.
package formatting

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// units are base-1024 multiples, indexed by exponent.
var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatBytes renders n with the largest unit that keeps the value at or
// above 1. Negative precision is treated as zero.
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}

	size := float64(n)
	exp := 0
	for math.Abs(size) >= 1024 && exp < len(units)-1 {
		size /= 1024
		exp++
	}

	return strconv.FormatFloat(size, 'f', max(precision, 0), 64) + " " + units[exp]
}

// ParseBytes reads sizes such as "512", "50MB" or "1.5 gb". A bare number is
// a byte count; units are case-insensitive and may follow a space.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	number, unit := s, ""
	if i := strings.IndexFunc(s, isNotNumeric); i >= 0 {
		number, unit = s[:i], strings.TrimSpace(s[i:])
	}
	if number == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	exp := 0
	if unit != "" {
		exp = slices.Index(units, strings.ToUpper(unit))
		if exp < 0 {
			return 0, fmt.Errorf("unknown byte size unit: %q", unit)
		}
	}

	return int64(value * math.Pow(1024, float64(exp))), nil
}

func isNotNumeric(r rune) bool {
	return r != '.' && !unicode.IsDigit(r)
}
