package tsplot

import (
	"math"
	"sort"
)

// Percentile returns the p-th percentile (0 to 100) of all non-NaN values across
// the given sets, interpolating linearly between the two closest ranks. NaN is
// returned if there are no values.
func Percentile(p float64, sets ...[]float64) float64 {
	var values []float64
	for _, set := range sets {
		for _, v := range set {
			if !math.IsNaN(v) {
				values = append(values, v)
			}
		}
	}

	if len(values) == 0 {
		return NaN
	}

	sort.Float64s(values)

	rank := p / 100 * float64(len(values)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))

	if lo < 0 {
		return values[0]
	}
	if hi >= len(values) {
		return values[len(values)-1]
	}

	return values[lo] + (values[hi]-values[lo])*(rank-float64(lo))
}

// maxValue returns the largest non-NaN value across the given sets, or NaN.
func maxValue(sets ...[]float64) float64 {
	max := NaN
	for _, set := range sets {
		for _, v := range set {
			if math.IsNaN(max) || v > max {
				max = v
			}
		}
	}
	return max
}

// minPositive returns the smallest value above 0 across the given sets, or NaN.
func minPositive(sets ...[]float64) float64 {
	min := NaN
	for _, set := range sets {
		for _, v := range set {
			if v > 0 && (math.IsNaN(min) || v < min) {
				min = v
			}
		}
	}
	return min
}

// firstValid returns the first index at which any of the sets has a non-NaN
// value, or -1.
func firstValid(sets ...[]float64) int {
	if len(sets) == 0 {
		return -1
	}

	for i := range sets[0] {
		for _, set := range sets {
			if !math.IsNaN(set[i]) {
				return i
			}
		}
	}

	return -1
}

// cleanInf returns a copy of values with infinities replaced by NaN. If
// positive is true, values at or below 0 are also replaced.
func cleanInf(values []float64, positive bool) []float64 {
	clean := make([]float64, len(values))
	for i, v := range values {
		if math.IsInf(v, 0) || (positive && v <= 0) {
			v = NaN
		}
		clean[i] = v
	}
	return clean
}
