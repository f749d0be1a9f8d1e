// Package assert contains checks for programming errors. A failed check panics,
// as continuing would let the simulation of this peer diverge from all others.
package assert

import (
	"fmt"
)

// PowerOfTwo panics if value is not a positive power of two.
func PowerOfTwo(value int) {
	if value <= 0 || value&(value-1) != 0 {
		panic(fmt.Sprintf("expected a positive power of two, got %d", value))
	}
}

// Positive panics if value is not greater than zero.
func Positive(name string, value int) {
	if value <= 0 {
		panic(fmt.Sprintf("%s must be positive, got %d", name, value))
	}
}
