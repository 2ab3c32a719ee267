// Package sampling estimates the reference distribution of a random walk
// of unit vectors, the model the observed |x_p| are compared against.
package sampling

import (
	"math"

	"q47-expsums/pkg/hash"
)

// RayleighMean returns sqrt(pi*k)/2, the mean length of a sum of k
// independent uniformly oriented unit vectors in the Gaussian limit.
func RayleighMean(k int) float64 {
	return math.Sqrt(math.Pi*float64(k)) / 2
}

// WalkLength draws k uniform angles from s and returns |sum exp(i*theta_j)|.
func WalkLength(s *hash.Stream, k int) float64 {
	var re, im float64
	for j := 0; j < k; j++ {
		sin, cos := math.Sincos(2 * math.Pi * s.Float64())
		re += cos
		im += sin
	}
	return math.Hypot(re, im)
}

// WalkMean estimates the mean walk length over the given number of trials.
// The estimate is a deterministic function of seed.
func WalkMean(seed []byte, k, trials int) float64 {
	if trials <= 0 || k <= 0 {
		return 0
	}
	s := hash.NewStream(seed, 0)
	var total float64
	for i := 0; i < trials; i++ {
		total += WalkLength(s, k)
	}
	return total / float64(trials)
}
