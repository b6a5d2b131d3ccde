// Package rng provides the engine's two dice sources: a seeded PRNG for
// production play, and a scripted fixed sequence for deterministic tests
// and reproduction.
//
// Seed derivation mixes a single int64 seed into the two 64-bit seeds
// rand/v2's PCG generator needs, so every call site gets a reproducible
// sequence from one human-given number.
package rng

import "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// Seeded draws uniformly from {1,...,6} using a PCG generator seeded
// deterministically from a single int64.
type Seeded struct {
	r *rand.Rand
}

// NewSeeded returns a Seeded dice source derived from seed.
func NewSeeded(seed int64) *Seeded {
	u := uint64(seed)
	return &Seeded{r: rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))}
}

// Roll returns the next die value, 1..6.
func (s *Seeded) Roll() int {
	return s.r.IntN(6) + 1
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Scripted replays a fixed sequence of die values, for tests and replay
// reproduction. Rolling past the end
// of the script is a test-authoring bug, not a recoverable game state, so
// it panics rather than wrapping or returning a zero value.
type Scripted struct {
	values []int
	next   int
}

// NewScripted returns a Scripted dice source that yields values in order.
func NewScripted(values []int) *Scripted {
	cp := append([]int(nil), values...)
	return &Scripted{values: cp}
}

// Roll returns the next scripted value.
func (s *Scripted) Roll() int {
	if s.next >= len(s.values) {
		panic("rng: scripted dice sequence exhausted")
	}
	v := s.values[s.next]
	s.next++
	return v
}

// Remaining reports how many scripted values are left unconsumed.
func (s *Scripted) Remaining() int {
	return len(s.values) - s.next
}
