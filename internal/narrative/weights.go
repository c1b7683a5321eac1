package narrative

import "math"

// SumTolerance is the slack allowed when checking that the probabilities of
// an option's targets sum to 1. Float comparisons against exactly 1 are
// never used.
const SumTolerance = 1e-9

// ProbabilitySum adds up the probability weights of targets.
func ProbabilitySum(targets []Target) float64 {
	var sum float64
	for _, target := range targets {
		sum += target.Probability
	}
	return sum
}

// Normalized reports whether the weights already sum to 1 within tolerance.
func Normalized(targets []Target) bool {
	if len(targets) == 0 {
		return true
	}
	return math.Abs(ProbabilitySum(targets)-1) <= SumTolerance
}

// Normalize rescales every weight by 1/sum so the list sums to 1, keeping
// the relative weighting the author chose. A zero sum falls back to equal
// weights. No-op on an empty list; idempotent once normalized.
func Normalize(targets []Target) {
	if len(targets) == 0 {
		return
	}
	sum := ProbabilitySum(targets)
	if sum == 0 {
		EvenDistribution(targets)
		return
	}
	for i := range targets {
		targets[i].Probability /= sum
	}
}

// EvenDistribution assigns 1/n to every target, discarding prior weights.
// No-op on an empty list.
func EvenDistribution(targets []Target) {
	if len(targets) == 0 {
		return
	}
	share := 1 / float64(len(targets))
	for i := range targets {
		targets[i].Probability = share
	}
}
