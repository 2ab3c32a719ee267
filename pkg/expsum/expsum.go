// Package expsum computes the exponential sums
//
//	S_p = sum_{n=0}^{p-1} exp(2*pi*i*Q(n)/p)
//
// of the Titan polynomial Q(n) = n^d - (n-1)^d and their normalization
// x_p = S_p / sqrt(p).
package expsum

import (
	"math"
	"math/cmplx"

	"q47-expsums/pkg/field"
	"q47-expsums/pkg/poly"
)

// Result is the normalized sum x_p for one prime.
type Result struct {
	P   uint32
	Re  float64
	Im  float64
	Mag float64
}

// Complex returns x_p as a complex number.
func (r Result) Complex() complex128 {
	return complex(r.Re, r.Im)
}

// WeilBound returns the Weil bound on |x_p| for a polynomial of degree d-1,
// that is d-2.
func WeilBound(d uint32) float64 {
	return float64(d) - 2
}

// Roots returns exp(2*pi*i*k/p) for k = 0..p-1.
func Roots(p uint32) []complex128 {
	roots := make([]complex128, p)
	step := 2 * math.Pi / float64(p)
	for k := range roots {
		s, c := math.Sincos(step * float64(k))
		roots[k] = complex(c, s)
	}
	return roots
}

// Sum returns S_p for Q(n) = n^d - (n-1)^d over f.
// Values of Q are first counted per residue, so each root of unity is
// computed once.
func Sum(f field.Field, d uint32) complex128 {
	counts := make([]uint32, f.P)
	for n := uint32(0); n < f.P; n++ {
		counts[poly.EvalTitan(f, d, n)]++
	}

	var re, im float64
	for v, root := range Roots(f.P) {
		if counts[v] == 0 {
			continue
		}
		c := float64(counts[v])
		re += c * real(root)
		im += c * imag(root)
	}
	return complex(re, im)
}

// SumDirect returns S_p by adding one unit vector per residue.
func SumDirect(f field.Field, d uint32) complex128 {
	var s complex128
	scale := 2 * math.Pi / float64(f.P)
	for n := uint32(0); n < f.P; n++ {
		theta := scale * float64(poly.EvalTitan(f, d, n))
		s += cmplx.Exp(complex(0, theta))
	}
	return s
}

// Normalize divides s by sqrt(p).
func Normalize(p uint32, s complex128) Result {
	sq := math.Sqrt(float64(p))
	re, im := real(s)/sq, imag(s)/sq
	return Result{
		P:   p,
		Re:  re,
		Im:  im,
		Mag: math.Hypot(re, im),
	}
}

// Compute returns x_p for the prime p.
func Compute(p, d uint32) (Result, error) {
	f, err := field.New(p)
	if err != nil {
		return Result{}, err
	}
	return Normalize(p, Sum(f, d)), nil
}
