// Package field provides arithmetic in the prime field Z_p for a modulus
// chosen at run time.
//
// Elements are uint32 values in [0, p). The modulus must be an odd prime
// below 2^31 so that every intermediate product fits in a uint64.
package field

import (
	"errors"
	"fmt"
)

// MaxModulus is the exclusive upper bound on supported moduli.
const MaxModulus = 1 << 31

// ErrModulus is returned by New for moduli the field cannot represent.
var ErrModulus = errors.New("field: modulus must be odd and in [3, 2^31)")

// Field holds a prime modulus together with its Montgomery constants.
type Field struct {
	// P is the prime modulus.
	P uint32

	// qInvNeg = -P^(-1) mod 2^32
	qInvNeg uint32

	// r2 = 2^64 mod P
	r2 uint32
}

// New returns the field Z_p. It does not test p for primality; callers
// obtain p from the primes package.
func New(p uint32) (Field, error) {
	if p < 3 || p%2 == 0 || p >= MaxModulus {
		return Field{}, fmt.Errorf("%w: got %d", ErrModulus, p)
	}

	// Newton iteration doubles the number of correct low bits each step:
	// 3 bits from the seed, then 6, 12, 24, 48.
	inv := p
	for i := 0; i < 4; i++ {
		inv *= 2 - p*inv
	}

	r := (uint64(1) << 32) % uint64(p)
	return Field{
		P:       p,
		qInvNeg: -inv,
		r2:      uint32(r * r % uint64(p)),
	}, nil
}

// MustNew is like New but panics on an invalid modulus.
func MustNew(p uint32) Field {
	f, err := New(p)
	if err != nil {
		panic(err)
	}
	return f
}

// Mod returns x mod P, handling negative values correctly.
func (f Field) Mod(x int64) uint32 {
	x %= int64(f.P)
	if x < 0 {
		x += int64(f.P)
	}
	return uint32(x)
}

// Add returns (a + b) mod P.
func (f Field) Add(a, b uint32) uint32 {
	sum := uint64(a) + uint64(b)
	if sum >= uint64(f.P) {
		sum -= uint64(f.P)
	}
	return uint32(sum)
}

// Sub returns (a - b) mod P without a negative intermediate.
func (f Field) Sub(a, b uint32) uint32 {
	if a >= b {
		return a - b
	}
	return f.P - b + a
}

// Mul returns (a * b) mod P.
func (f Field) Mul(a, b uint32) uint32 {
	return uint32((uint64(a) * uint64(b)) % uint64(f.P))
}

// Neg returns (-a) mod P.
func (f Field) Neg(a uint32) uint32 {
	if a == 0 {
		return 0
	}
	return f.P - a
}

// Exp returns a^e mod P using binary exponentiation.
func (f Field) Exp(a uint32, e uint32) uint32 {
	p := uint64(f.P)
	result := uint64(1) % p
	base := uint64(a) % p
	for e > 0 {
		if e&1 == 1 {
			result = (result * base) % p
		}
		base = (base * base) % p
		e >>= 1
	}
	return uint32(result)
}

// Inv returns the modular inverse of a using Fermat's little theorem.
// Inv(0) returns 0.
func (f Field) Inv(a uint32) uint32 {
	if a%f.P == 0 {
		return 0
	}
	return f.Exp(a, f.P-2)
}

// --- Montgomery Multiplication ---
// Montgomery form: a_M = a * R mod P where R = 2^32
// MulMont(a_M, b) = a * b (normal form)
// MulMont(a_M, b_M) = (a * b)_M (Montgomery form)

// MulMont computes the Montgomery reduction of a*b.
func (f Field) MulMont(a, b uint32) uint32 {
	t := uint64(a) * uint64(b)
	m := uint32(t) * f.qInvNeg
	u := (t + uint64(m)*uint64(f.P)) >> 32
	if u >= uint64(f.P) {
		u -= uint64(f.P)
	}
	return uint32(u)
}

// ToMont converts a to Montgomery form.
func (f Field) ToMont(a uint32) uint32 {
	return f.MulMont(a%f.P, f.r2)
}

// FromMont converts a_M out of Montgomery form.
func (f Field) FromMont(aM uint32) uint32 {
	return f.MulMont(aM, 1)
}

// ExpMont returns a^e mod P, squaring in Montgomery form.
// Input and output are in normal form.
func (f Field) ExpMont(a uint32, e uint32) uint32 {
	res := f.ToMont(1)
	base := f.ToMont(a)
	for e > 0 {
		if e&1 == 1 {
			res = f.MulMont(res, base)
		}
		base = f.MulMont(base, base)
		e >>= 1
	}
	return f.FromMont(res)
}
