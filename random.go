package lockstep

import (
	"fmt"
)

// RandomSeed is the state of a deterministic xorshift generator. Kept as a
// component in the world store, it is rolled back like any other state.
type RandomSeed struct {
	Value int32
}

// NewRandomSeed creates a seed. The xorshift generator never leaves zero,
// a zero seed is replaced with a fixed value.
func NewRandomSeed(seed int32) RandomSeed {
	if seed == 0 {
		seed = 0x2545F491
	}

	return RandomSeed{Value: seed}
}

func (s *RandomSeed) Next() int32 {
	s.Value ^= s.Value << 13
	s.Value ^= s.Value >> 17
	s.Value ^= s.Value << 5
	return s.Value
}

// Range returns a value in [min, max). It panics if max <= min.
func (s *RandomSeed) Range(min, max int32) int32 {
	if max <= min {
		panic(fmt.Sprintf("invalid range [%d, %d)", min, max))
	}

	return rangeOf(s.Next(), min, max)
}

// rangeOf maps value into [min, max) by the remainder of its absolute value.
// math.MinInt32 has no positive counterpart in int32, its absolute value is
// taken as the uint32 2^31.
func rangeOf(value, min, max int32) int32 {
	// absolute value without branching
	mask := value >> 31
	abs := uint32((mask ^ value) - mask)

	return int32(abs%uint32(max-min)) + min
}
