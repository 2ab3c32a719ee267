// Package stats summarizes the per-prime magnitudes |x_p|.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds aggregate statistics of a magnitude sequence.
type Summary struct {
	N      int
	Mean   float64
	Max    float64
	MaxAt  uint32 // prime attaining Max
	Min    float64
	MinAt  uint32 // prime attaining Min
	Median float64
	StdDev float64 // population standard deviation
}

// Summarize computes the summary of mags, where mags[i] belongs to primes[i].
// Both slices must have the same length. An empty input gives a zero Summary.
func Summarize(primes []uint32, mags []float64) Summary {
	if len(primes) != len(mags) {
		panic("stats: primes and magnitudes differ in length")
	}
	if len(mags) == 0 {
		return Summary{}
	}

	mean, std := stat.PopMeanStdDev(mags, nil)
	maxIdx := floats.MaxIdx(mags)
	minIdx := floats.MinIdx(mags)

	sorted := append([]float64(nil), mags...)
	sort.Float64s(sorted)

	return Summary{
		N:      len(mags),
		Mean:   mean,
		Max:    mags[maxIdx],
		MaxAt:  primes[maxIdx],
		Min:    mags[minIdx],
		MinAt:  primes[minIdx],
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdDev: std,
	}
}

// Exclude returns copies of primes and mags without the entries for p.
func Exclude(primes []uint32, mags []float64, p uint32) ([]uint32, []float64) {
	ps := make([]uint32, 0, len(primes))
	ms := make([]float64, 0, len(mags))
	for i, q := range primes {
		if q == p {
			continue
		}
		ps = append(ps, q)
		ms = append(ms, mags[i])
	}
	return ps, ms
}
