// Package poly evaluates the Titan polynomial Q(n) = n^d - (n-1)^d over Z_p.
package poly

import "q47-expsums/pkg/field"

// Degree47 is the exponent studied in the survey.
const Degree47 = 47

// EvalTitan returns n^d - (n-1)^d mod p, normalized into [0, p).
// Both powers use binary exponentiation; n = 0 takes p-1 for n-1.
func EvalTitan(f field.Field, d, n uint32) uint32 {
	n %= f.P
	return f.Sub(f.ExpMont(n, d), f.ExpMont(f.Sub(n, 1), d))
}

// Poly represents a polynomial over Z_p, lowest degree coefficient first.
type Poly []uint32

// Titan expands n^d - (n-1)^d by the binomial theorem.
// The n^d terms cancel, leaving degree d-1 with leading coefficient d mod p.
func Titan(f field.Field, d uint32) Poly {
	row := binomialRow(f, d)
	c := make(Poly, d+1)
	for k := uint32(0); k < d; k++ {
		// (n-1)^d contributes C(d,k) * (-1)^(d-k) * n^k
		term := row[k]
		if (d-k)%2 == 1 {
			term = f.Neg(term)
		}
		c[k] = f.Neg(term)
	}
	return c.Trim()
}

// binomialRow returns C(d, k) mod p for k = 0..d using Pascal's rule,
// which stays valid when d >= p.
func binomialRow(f field.Field, d uint32) []uint32 {
	row := make([]uint32, d+1)
	row[0] = 1 % f.P
	for i := uint32(1); i <= d; i++ {
		for k := i; k > 0; k-- {
			row[k] = f.Add(row[k], row[k-1])
		}
	}
	return row
}

// Trim drops zero high-order coefficients.
func (a Poly) Trim() Poly {
	n := len(a)
	for n > 0 && a[n-1] == 0 {
		n--
	}
	return a[:n]
}

// Degree returns the degree of a, or -1 for the zero polynomial.
func (a Poly) Degree() int {
	return len(a.Trim()) - 1
}

// Eval evaluates a at x with Horner's rule.
func (a Poly) Eval(f field.Field, x uint32) uint32 {
	x %= f.P
	var acc uint32
	for i := len(a) - 1; i >= 0; i-- {
		acc = f.Add(f.Mul(acc, x), a[i])
	}
	return acc
}

// Compose returns a(s*x + t).
func (a Poly) Compose(f field.Field, s, t uint32) Poly {
	s %= f.P
	t %= f.P
	result := make(Poly, 0, len(a))
	for i := len(a) - 1; i >= 0; i-- {
		// result = result * (s*x + t) + a[i]
		next := make(Poly, len(result)+1)
		for j, c := range result {
			next[j] = f.Add(next[j], f.Mul(c, t))
			next[j+1] = f.Add(next[j+1], f.Mul(c, s))
		}
		next[0] = f.Add(next[0], a[i])
		result = next
	}
	return result.Trim()
}

// Equal returns true if two polynomials are equal after trimming.
func Equal(a, b Poly) bool {
	a, b = a.Trim(), b.Trim()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
