package sla

import (
	"math"
	"sort"
)

// Percentile computes the pct-th percentile of values using interpolated
// rank: the value at position (pct/100)×(n−1) with linear interpolation
// between adjacent order statistics. Returns false for an empty input.
//
// The rule is fixed here, independent of the aggregator, because percentile
// definitions vary and a silent switch to nearest-rank would change the
// summary report without any visible failure.
func Percentile(values []float64, pct float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0], true
	}

	pos := pct / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		return sorted[0], true
	}
	if hi >= len(sorted) {
		return sorted[len(sorted)-1], true
	}
	if lo == hi {
		return sorted[lo], true
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo]), true
}

// Median is the 50th percentile under the same interpolation rule.
func Median(values []float64) (float64, bool) {
	return Percentile(values, 50)
}
