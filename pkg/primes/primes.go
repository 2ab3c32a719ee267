// Package primes enumerates primes in an arithmetic progression.
package primes

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// ErrQuery is returned for a malformed selection.
var ErrQuery = errors.New("primes: invalid query")

// Query selects primes p with Start <= p < Limit and p = Residue (mod Modulus).
type Query struct {
	Start   uint32
	Limit   uint32
	Modulus uint32
	Residue uint32
}

func (q Query) validate() error {
	if q.Modulus == 0 {
		return fmt.Errorf("%w: modulus is zero", ErrQuery)
	}
	if q.Residue >= q.Modulus {
		return fmt.Errorf("%w: residue %d not reduced mod %d", ErrQuery, q.Residue, q.Modulus)
	}
	if q.Limit <= q.Start {
		return fmt.Errorf("%w: empty range [%d, %d)", ErrQuery, q.Start, q.Limit)
	}
	return nil
}

// Sieve returns all primes <= limit in increasing order (Sieve of Eratosthenes).
func Sieve(limit uint32) []uint32 {
	if limit < 2 {
		return nil
	}
	composite := make([]bool, uint64(limit)+1)
	root := uint32(math.Sqrt(float64(limit)))
	for i := uint32(2); i <= root; i++ {
		if composite[i] {
			continue
		}
		for j := uint64(i) * uint64(i); j <= uint64(limit); j += uint64(i) {
			composite[j] = true
		}
	}

	// pi(x) ~ x / ln x
	out := make([]uint32, 0, int(float64(limit)/math.Log(float64(limit)))+16)
	for i := uint64(2); i <= uint64(limit); i++ {
		if !composite[i] {
			out = append(out, uint32(i))
		}
	}
	return out
}

// Select returns the primes matching q, in increasing order.
func Select(q Query) ([]uint32, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	var out []uint32
	for _, p := range Sieve(q.Limit - 1) {
		if p < q.Start {
			continue
		}
		if p%q.Modulus == q.Residue {
			out = append(out, p)
		}
	}
	return out, nil
}

// Stepped computes the same selection as Select by walking the residue
// class and testing each candidate with a probabilistic primality test.
func Stepped(q Query) ([]uint32, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	// first candidate >= Start in the residue class
	candidate := uint64(q.Start) - uint64(q.Start)%uint64(q.Modulus) + uint64(q.Residue)
	if candidate < uint64(q.Start) {
		candidate += uint64(q.Modulus)
	}

	var out []uint32
	for ; candidate < uint64(q.Limit); candidate += uint64(q.Modulus) {
		if IsPrime(candidate) {
			out = append(out, uint32(candidate))
		}
	}
	return out, nil
}

// IsPrime reports whether n is prime. It is exact for n < 2^64 since
// ProbablyPrime applies a Baillie-PSW test in addition to the rounds.
func IsPrime(n uint64) bool {
	return new(big.Int).SetUint64(n).ProbablyPrime(20)
}
