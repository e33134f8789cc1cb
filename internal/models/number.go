package models

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// leadingNumber matches the numeric prefix a browser's parseFloat would accept.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseLooseFloat parses the leading number of s, ignoring surrounding
// whitespace and any trailing text ("12.5m" is 12.5). It reports false when s
// has no numeric prefix or the value is not finite.
func ParseLooseFloat(s string) (float64, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// FormatNumber renders f the way a JSON number is shown to users: the shortest
// decimal form, no exponent and no trailing zeros (12 not 12.0).
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Float returns a pointer to f, for optional payload fields.
func Float(f float64) *float64 {
	return &f
}
