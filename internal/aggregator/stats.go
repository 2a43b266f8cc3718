package aggregator

import (
	"math"
	"sort"
)

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}

	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}

	return (sorted[mid-1] + sorted[mid]) / 2
}

// sampleStd is the standard deviation with n-1 degrees of freedom.
func sampleStd(xs []float64) float64 {
	m := mean(xs)

	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}

	return math.Sqrt(ss / float64(len(xs)-1))
}

// pearson returns the correlation coefficient of xs and ys, or false when
// either side has zero variance.
func pearson(xs, ys []float64) (float64, bool) {
	mx, my := mean(xs), mean(ys)

	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}

	if sxx == 0 || syy == 0 {
		return 0, false
	}

	return sxy / math.Sqrt(sxx*syy), true
}

func ptr(f float64) *float64 {
	return &f
}
