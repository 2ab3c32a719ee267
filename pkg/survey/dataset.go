package survey

import (
	"fmt"

	"q47-expsums/pkg/expsum"
)

// Dataset holds the per-prime values as parallel sequences indexed by the
// position of the prime in the survey.
type Dataset struct {
	Primes []uint32
	Re     []float64
	Im     []float64
	Mag    []float64
}

// FromResults builds a dataset in the order of rs.
func FromResults(rs []expsum.Result) *Dataset {
	d := &Dataset{
		Primes: make([]uint32, len(rs)),
		Re:     make([]float64, len(rs)),
		Im:     make([]float64, len(rs)),
		Mag:    make([]float64, len(rs)),
	}
	for i, r := range rs {
		d.Primes[i] = r.P
		d.Re[i] = r.Re
		d.Im[i] = r.Im
		d.Mag[i] = r.Mag
	}
	return d
}

// Len returns the number of primes.
func (d *Dataset) Len() int {
	return len(d.Primes)
}

// Validate checks that all sequences have the same length.
func (d *Dataset) Validate() error {
	n := len(d.Primes)
	if len(d.Re) != n || len(d.Im) != n || len(d.Mag) != n {
		return fmt.Errorf("survey: sequence lengths differ: primes=%d re=%d im=%d mag=%d",
			n, len(d.Re), len(d.Im), len(d.Mag))
	}
	return nil
}

// Results returns the dataset as a slice of per-prime results.
func (d *Dataset) Results() []expsum.Result {
	rs := make([]expsum.Result, d.Len())
	for i := range rs {
		rs[i] = expsum.Result{P: d.Primes[i], Re: d.Re[i], Im: d.Im[i], Mag: d.Mag[i]}
	}
	return rs
}

// Index returns the position of p, or -1.
func (d *Dataset) Index(p uint32) int {
	for i, q := range d.Primes {
		if q == p {
			return i
		}
	}
	return -1
}
