package formulas

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile of data using linear interpolation between
// order statistics at position h = (n-1)*p (the Hyndman-Fan type 7
// convention, the default in numpy and Excel). NaN entries are ignored.
//
// Returns NaN for an empty (or all-NaN) input or for p outside [0, 1].
func Quantile(data []float64, p float64) float64 {
	if p < 0 || p > 1 {
		return math.NaN()
	}

	clean := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)

	h := float64(len(clean)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(clean)-1 {
		return clean[len(clean)-1]
	}
	return clean[lo] + (h-float64(lo))*(clean[lo+1]-clean[lo])
}
