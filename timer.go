package lockstep

import (
	"github.com/oliverbestmann/lockstep/internal/assert"
)

type TimerMode uint8

const TimerModeOnce TimerMode = 0
const TimerModeRepeating TimerMode = 1

// Timer is either a one of or a repeating timer counting simulation ticks.
// It holds no pointers and can be tracked like any other value.
type Timer struct {
	duration int32
	elapsed  int32

	finishedCountInTick int32
	finished            bool
	mode                TimerMode
}

// NewTimer creates a timer that finishes after the given number of ticks.
func NewTimer(ticks int32, mode TimerMode) Timer {
	assert.Positive("timer duration", int(ticks))

	return Timer{
		duration: ticks,
		mode:     mode,
	}
}

// Tick advances the timer by the given number of ticks.
func (t *Timer) Tick(ticks int32) *Timer {
	t.finishedCountInTick = 0

	if t.finished && t.mode == TimerModeOnce {
		// nothing to do, timer is done
		return t
	}

	t.elapsed += ticks

	if t.elapsed >= t.duration {
		if t.mode == TimerModeOnce {
			t.elapsed = t.duration
			t.finished = true
			t.finishedCountInTick = 1
			return t
		}

		// repeating timer keeps the remainder
		t.finishedCountInTick = t.elapsed / t.duration
		t.elapsed = t.elapsed % t.duration
	}

	return t
}

func (t *Timer) Duration() int32 {
	return t.duration
}

func (t *Timer) Elapsed() int32 {
	return t.elapsed
}

func (t *Timer) Remaining() int32 {
	return t.duration - t.elapsed
}

// Fraction returns how far the timer has progressed. It must only be used for
// presentation, never to drive the simulation.
func (t *Timer) Fraction() float64 {
	return float64(t.elapsed) / float64(t.duration)
}

// Finished returns true once a TimerModeOnce timer has run out.
// A repeating timer never finishes.
func (t *Timer) Finished() bool {
	return t.finished
}

// JustFinished returns true if the timer has reached its duration at the previous call to Tick.
func (t *Timer) JustFinished() bool {
	return t.finishedCountInTick > 0
}

// TimesFinishedThisTick returns how often the timer has finished during the previous call to Tick.
func (t *Timer) TimesFinishedThisTick() int {
	return int(t.finishedCountInTick)
}

func (t *Timer) Reset() {
	t.elapsed = 0
	t.finished = false
	t.finishedCountInTick = 0
}
