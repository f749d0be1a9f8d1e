package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPowerOfTwo(t *testing.T) {
	for _, value := range []int{1, 2, 4, 256, 1 << 20} {
		require.NotPanics(t, func() { PowerOfTwo(value) })
	}

	require.PanicsWithValue(t, "expected a positive power of two, got 0", func() { PowerOfTwo(0) })
	require.Panics(t, func() { PowerOfTwo(-2) })
	require.Panics(t, func() { PowerOfTwo(12) })
}

func TestPositive(t *testing.T) {
	require.NotPanics(t, func() { Positive("clients", 1) })
	require.PanicsWithValue(t, "clients must be positive, got 0", func() { Positive("clients", 0) })
}
