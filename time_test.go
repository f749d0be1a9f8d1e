package lockstep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClock_Advance(t *testing.T) {
	clock := NewClock(DefaultTicksPerSecond)
	require.Equal(t, 62500*time.Microsecond, clock.StepInterval)

	require.Equal(t, 0, clock.Advance(50*time.Millisecond))
	require.InDelta(t, 0.8, clock.Overstep(), 1e-9)

	// the remainder of the previous call is carried over
	require.Equal(t, 1, clock.Advance(50*time.Millisecond))
	require.Equal(t, 62500*time.Microsecond, clock.Elapsed)

	require.Equal(t, 16, clock.Advance(time.Second))
	require.Equal(t, 17*62500*time.Microsecond, clock.Elapsed)
}
