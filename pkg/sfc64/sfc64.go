// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sfc64 implements Chris Doty-Humphrey's Small Fast Chaotic PRNG
// (public domain). The fuzz driver uses it so that a printed seed replays the
// exact same inputs on every platform and Go release.
package sfc64

import "math/bits"

const (
	barrelShift = 24
	rshift      = 11
	lshift      = 3
)

// Source is an sfc64 generator. It implements math/rand/v2.Source.
// A Source is not safe for concurrent use.
type Source struct {
	a, b, c, counter uint64
}

// New returns a Source seeded with seed.
func New(seed uint64) *Source {
	s := new(Source)
	s.Seed(seed)
	return s
}

// Seed resets s to the state derived from seed.
func (s *Source) Seed(seed uint64) {
	s.a, s.b, s.c = seed, seed, seed
	s.counter = 1
	for range 12 {
		s.Uint64()
	}
}

// Uint64 returns the next raw 64-bit output.
func (s *Source) Uint64() uint64 {
	tmp := s.a + s.b + s.counter
	s.counter++
	s.a = s.b ^ (s.b >> rshift)
	s.b = s.c + (s.c << lshift)
	s.c = bits.RotateLeft64(s.c, barrelShift) + tmp
	return tmp
}

// Uint64n returns a uniform value in [0, n). It panics if n == 0.
func (s *Source) Uint64n(n uint64) uint64 {
	if n == 0 {
		panic("sfc64: Uint64n with n == 0")
	}
	max := n - 1
	mask := max
	mask |= mask >> 1
	mask |= mask >> 2
	mask |= mask >> 4
	mask |= mask >> 8
	mask |= mask >> 16
	mask |= mask >> 32
	for {
		if v := s.Uint64() & mask; v <= max {
			return v
		}
	}
}

// Intn returns a uniform value in [0, n). It panics if n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		panic("sfc64: Intn with n <= 0")
	}
	return int(s.Uint64n(uint64(n)))
}

// Bytes fills dst with uniformly random bytes.
func (s *Source) Bytes(dst []byte) {
	for i := range dst {
		dst[i] = byte(s.Uint64n(256))
	}
}
