package service

import (
	"math"
	"strings"
)

// lastOr returns the final value of a series, or fallback when the series
// is empty or ends in NaN.
func lastOr(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	v := values[len(values)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// floatPtr boxes a value, returning nil for NaN so unresolved indicators
// are omitted from the report instead of breaking JSON encoding.
func floatPtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}
