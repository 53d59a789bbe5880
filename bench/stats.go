package bench

import (
	"math"
	"sort"
)

// MedianResult picks the median run by duration.
func MedianResult(runs []Result) Result {
	if len(runs) == 1 {
		return runs[0]
	}
	sorted := make([]Result, len(runs))
	copy(sorted, runs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Duration < sorted[j].Duration })
	return sorted[len(sorted)/2]
}

// SteadyState checks if rows/sec variance across runs is within tolerance.
func SteadyState(runs []Result, tolerance float64) (bool, float64) {
	if len(runs) < 2 {
		return true, 0
	}
	var sum float64
	for _, r := range runs {
		sum += r.RowsPerSec
	}
	mean := sum / float64(len(runs))
	if mean == 0 {
		return false, 0
	}

	var maxDev float64
	for _, r := range runs {
		dev := math.Abs(r.RowsPerSec-mean) / mean
		if dev > maxDev {
			maxDev = dev
		}
	}
	return maxDev <= tolerance, maxDev
}
