// Package random provides the seedable random source behind every probabilistic
// rule kind.
//
// A Source is either seeded, in which case it draws from a 32-bit linear
// congruential generator whose state advances on every draw, or unseeded, in
// which case it defers to the math/rand global generator. The same seed
// always produces the same sequence of draws, across runs and across process
// restarts, which is what makes generation replayable.
//
// A Source is not safe for concurrent use.
package random

import (
	"errors"
	"math/rand"
)

// LCG parameters (Numerical Recipes). The modulus is 2^32 and is applied by
// uint32 overflow.
const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
	lcgModulus    = 1 << 32
)

var (
	// ErrEmptyChoice is returned when a choice is drawn from an empty sequence.
	ErrEmptyChoice = errors.New("random: choice from empty sequence")

	// ErrWeightMismatch is returned when items and cumulative weights differ in length.
	ErrWeightMismatch = errors.New("random: items and cumulative weights differ in length")
)

// Source produces floats, ints and choices from an optional seed.
type Source struct {
	seeded bool
	seed   int64
	state  uint32
}

// New returns an unseeded Source.
func New() *Source {
	return &Source{}
}

// NewSeeded returns a Source already switched to the deterministic stream for seed.
func NewSeeded(seed int64) *Source {
	s := &Source{}
	s.SetSeed(seed)
	return s
}

// SetSeed switches the source to the deterministic stream for seed.
// Calling SetSeed again with the same seed restarts the same stream.
func (s *Source) SetSeed(seed int64) {
	s.seeded = true
	s.seed = seed
	s.state = uint32(uint64(seed) % lcgModulus)
}

// ClearSeed reverts the source to non-deterministic randomness.
func (s *Source) ClearSeed() {
	s.seeded = false
	s.seed = 0
	s.state = 0
}

// Seed returns the configured seed and whether one is set.
func (s *Source) Seed() (int64, bool) {
	return s.seed, s.seeded
}

// State returns the current LCG state. Zero when unseeded.
func (s *Source) State() uint32 {
	return s.state
}

// Float64 returns a value in [0, 1).
func (s *Source) Float64() float64 {
	if !s.seeded {
		return rand.Float64()
	}
	s.state = s.state*lcgMultiplier + lcgIncrement
	return float64(s.state) / lcgModulus
}

// IntN returns an integer in [min, max). If max <= min it returns min without
// consuming a draw.
func (s *Source) IntN(min, max int) int {
	if max <= min {
		return min
	}
	span := max - min
	n := int(s.Float64() * float64(span))
	// Guard against float rounding landing exactly on span.
	if n >= span {
		n = span - 1
	}
	return min + n
}

// Choice picks one item uniformly.
func (s *Source) Choice(items []string) (string, error) {
	if len(items) == 0 {
		return "", ErrEmptyChoice
	}
	return items[s.IntN(0, len(items))], nil
}

// WeightedChoice picks the first item whose cumulative weight exceeds a drawn
// float in [0, 1). The last item absorbs any mass lost to floating-point
// rounding in the cumulative weights.
func (s *Source) WeightedChoice(items []string, cumulative []float64) (string, error) {
	if len(items) == 0 {
		return "", ErrEmptyChoice
	}
	if len(items) != len(cumulative) {
		return "", ErrWeightMismatch
	}
	r := s.Float64()
	for i, c := range cumulative {
		if r < c {
			return items[i], nil
		}
	}
	return items[len(items)-1], nil
}

// Cumulative converts weights into a running-sum distribution suitable for
// WeightedChoice.
func Cumulative(weights []float64) []float64 {
	out := make([]float64, len(weights))
	sum := 0.0
	for i, w := range weights {
		sum += w
		out[i] = sum
	}
	return out
}
