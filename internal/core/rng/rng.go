// Package rng provides a portable seeded generator. Output depends only on the
// seed and uses fixed 32-bit integer arithmetic, so sequences are identical on
// every platform and Go release (unlike math/rand).
package rng

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// Mulberry32 is a 32-bit state generator. The zero value is usable.
type Mulberry32 struct {
	state uint32
}

// New returns a generator seeded with seed.
func New(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Uint32 advances the state and returns the next output.
func (m *Mulberry32) Uint32() uint32 {
	m.state += 0x6d2b79f5
	z := m.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	return z ^ (z >> 14)
}

// Float64 returns a value in [0, 1) with 32 bits of resolution.
func (m *Mulberry32) Float64() float64 {
	return float64(m.Uint32()) / 4294967296.0
}

// Range returns a value in [lo, hi).
func (m *Mulberry32) Range(lo, hi float64) float64 {
	return lo + float64(m.Float64()*(hi-lo))
}

// Angle returns a value in [0, 2*pi).
func (m *Mulberry32) Angle() float64 {
	return m.Float64() * 2 * math.Pi
}

// SeedFor returns seed unchanged when non-zero, otherwise a stable seed
// derived from name.
func SeedFor(name string, seed uint32) uint32 {
	if seed != 0 {
		return seed
	}
	h := xxhash.Sum64String(name)
	s := uint32(h) ^ uint32(h>>32)
	if s == 0 {
		s = 1
	}
	return s
}
