package volume

import (
	"math"
	"strconv"
	"strings"
)

// IntOr parses a non-negative integer typed into a row field, returning def
// for anything else.
func IntOr(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// FloatOr parses a non-negative decimal ("42.5" or "42,5"), returning def for
// anything else.
func FloatOr(s string, def float64) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
