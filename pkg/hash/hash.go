// Package hash provides the SHA-3 primitives used for seeded sampling and
// for fingerprinting saved results.
package hash

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Stream provides incremental SHAKE-128 output for seed||nonce.
type Stream struct {
	h   sha3.ShakeHash
	buf [168]byte // SHAKE128 rate
	pos int
	end int
}

// NewStream creates a stream absorbing seed followed by the little-endian nonce.
func NewStream(seed []byte, nonce uint16) *Stream {
	h := sha3.NewShake128()
	h.Write(seed)
	h.Write([]byte{byte(nonce & 0xFF), byte(nonce >> 8)})
	return &Stream{h: h}
}

// Read fills p from the stream. It never fails.
func (s *Stream) Read(p []byte) (int, error) {
	for i := range p {
		if s.pos == s.end {
			s.refill()
		}
		p[i] = s.buf[s.pos]
		s.pos++
	}
	return len(p), nil
}

func (s *Stream) refill() {
	n, _ := s.h.Read(s.buf[:])
	s.pos = 0
	s.end = n
}

// Uint64 returns the next 8 bytes as a little-endian integer.
func (s *Stream) Uint64() uint64 {
	var b [8]byte
	s.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// Float64 returns a uniform value in [0, 1) built from 53 stream bits.
func (s *Stream) Float64() float64 {
	return float64(s.Uint64()>>11) / (1 << 53)
}

// Sum256 returns the SHA3-256 digest of data.
func Sum256(data []byte) [32]byte {
	return sha3.Sum256(data)
}
