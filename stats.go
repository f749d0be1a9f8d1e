package lockstep

import (
	"time"
)

type Timings struct {
	Count         int
	Latest        time.Duration
	MovingAverage time.Duration
	Min, Max      time.Duration
}

func (t Timings) Add(d time.Duration) Timings {
	t.Latest = d

	if t.Count == 0 {
		t.Min = d
		t.Max = d
	} else {
		t.Min = min(t.Min, d)
		t.Max = max(t.Max, d)
	}

	t.MovingAverage = (95*t.MovingAverage + 5*d) / 100

	t.Count += 1

	return t
}

// Stats collects timings of a Simulation.
type Stats struct {
	Step     Timings
	Rollback Timings

	// ResimulatedTicks counts the ticks applied again after a rollback.
	ResimulatedTicks int
}

type stopwatch struct {
	start time.Time
}

func startStopwatch() stopwatch {
	return stopwatch{start: time.Now()}
}

func (s stopwatch) StopInto(timings *Timings) {
	*timings = timings.Add(time.Since(s.start))
}
