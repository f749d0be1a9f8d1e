package lockstep

import (
	"time"
)

// Clock converts elapsed wall clock time into a number of fixed simulation steps.
//
// Time that does not add up to a full step is carried over to the next call of Advance.
type Clock struct {
	Elapsed      time.Duration
	StepInterval time.Duration

	overstep time.Duration
}

func NewClock(ticksPerSecond int) Clock {
	return Clock{StepInterval: time.Second / time.Duration(ticksPerSecond)}
}

// Advance adds delta to the clock and returns the number of steps that are due.
func (c *Clock) Advance(delta time.Duration) int {
	c.overstep += delta

	var steps int
	for c.overstep >= c.StepInterval {
		c.overstep -= c.StepInterval
		c.Elapsed += c.StepInterval
		steps += 1
	}

	return steps
}

// Overstep returns the fraction of a step accumulated since the last full step.
func (c *Clock) Overstep() float64 {
	return float64(c.overstep) / float64(c.StepInterval)
}
