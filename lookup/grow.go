package lookup

import (
	"fmt"
	"math"

	"github.com/oliverbestmann/lockstep/internal/assert"
)

// DefaultCapacity is the backing length used by a zero value on first insert.
const DefaultCapacity = 16

func checkCapacity(initialCapacity int) {
	assert.Positive("initial capacity", initialCapacity)
}

// checkId panics if id is outside of the int32 range. Larger ids would overflow
// the offset arithmetic and the backing length.
func checkId(id int) {
	if id < math.MinInt32 || id > math.MaxInt32 {
		panic(fmt.Sprintf("id %d out of range [%d, %d]", id, math.MinInt32, math.MaxInt32))
	}
}

// recenter computes the backing length and offset required so that index fits
// into [0, length). Each doubling moves the offset by half the previous length,
// which keeps the existing range centered and lets ids grow in both directions.
func recenter(length, offset, index int) (newLength, newOffset int) {
	newLength, newOffset = length, offset

	minIndex := min(index, 0)
	maxIndex := max(index, length-1)

	for minIndex < 0 || maxIndex >= newLength {
		shift := newLength >> 1

		newLength <<= 1
		newOffset += shift

		minIndex += shift
		maxIndex += shift
	}

	return newLength, newOffset
}

func inRange(index, length int) bool {
	return uint(index) < uint(length)
}
