package distribution

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

// CumulativeWeights returns the running sums of weights, in order.
// Weights are expected to sum to 1 but are not normalized; Select copes
// with a total that falls short.
func CumulativeWeights(weights []float64) []float64 {
	cum := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		total += w
		cum[i] = total
	}
	return cum
}

// Select returns the first index i with r <= cum[i]. When r lands beyond
// the last cumulative value (weights summing to less than 1, or float
// drift) the selection is clamped to the last index instead of running
// off the end. Returns -1 for an empty cum.
func Select(cum []float64, r float64) int {
	if len(cum) == 0 {
		return -1
	}
	i := 0
	for cum[i] < r {
		if i == len(cum)-1 {
			logrus.Debugf("weighted selection overflow: draw %.6f above cumulative total %.6f, clamped to index %d", r, cum[i], i)
			return i
		}
		i++
	}
	return i
}

// Pick draws r uniformly from [0, 1) and returns Select(cum, r).
func Pick(cum []float64, rng *rand.Rand) int {
	return Select(cum, rng.Float64())
}
