// Package history records the values a piece of state had at past ticks.
//
// A History is a ring of fixed capacity storing (tick, value) records as parallel
// arrays. Writing never allocates; once the ring is full the oldest record is
// overwritten. Ticks must be recorded in strictly increasing order, Rollback is
// the only way to go back in time.
package history

import (
	"errors"
	"fmt"
	"iter"

	"github.com/oliverbestmann/lockstep/internal/assert"
	"github.com/oliverbestmann/lockstep/spoke"
)

// ErrEmpty is returned when querying a history without any records.
var ErrEmpty = errors.New("history is empty")

// ErrNoRecord is returned when the queried tick lies before the oldest retained
// record, either because it was evicted or because it was never recorded.
var ErrNoRecord = errors.New("no record at or before tick")

type Record[T any] struct {
	Tick spoke.Tick
	// Value is only meaningful if Present is set.
	Value   T
	Present bool
}

type History[T any] struct {
	ticks   []spoke.Tick
	values  []T
	present []bool

	// index of the oldest record and number of records
	head, count int

	mask int
}

// New creates a history holding up to capacity records.
// It panics if capacity is not a positive power of two.
func New[T any](capacity int) *History[T] {
	assert.PowerOfTwo(capacity)

	return &History[T]{
		ticks:   make([]spoke.Tick, capacity),
		values:  make([]T, capacity),
		present: make([]bool, capacity),
		mask:    capacity - 1,
	}
}

func (h *History[T]) Len() int {
	return h.count
}

func (h *History[T]) Cap() int {
	return len(h.ticks)
}

// Set records value for the given tick. The tick must be greater than every tick
// currently recorded. If the history is full, the oldest record is evicted.
func (h *History[T]) Set(tick spoke.Tick, value T) {
	h.append(tick, value, true)
}

// SetAbsent records that there was no value at the given tick.
func (h *History[T]) SetAbsent(tick spoke.Tick) {
	var zero T
	h.append(tick, zero, false)
}

// At returns the most recent record at or before tick.
func (h *History[T]) At(tick spoke.Tick) (Record[T], error) {
	if h.count == 0 {
		return Record[T]{}, ErrEmpty
	}

	for n := h.count - 1; n >= 0; n-- {
		idx := h.index(n)
		if h.ticks[idx] <= tick {
			return h.record(idx), nil
		}
	}

	oldest := h.ticks[h.head]
	return Record[T]{}, fmt.Errorf("tick %d, oldest record is at tick %d: %w", tick, oldest, ErrNoRecord)
}

// Get returns the value that was current at the given tick. It returns false
// if no such record is retained or if the record marks the value as absent.
func (h *History[T]) Get(tick spoke.Tick) (T, bool) {
	record, err := h.At(tick)
	if err != nil || !record.Present {
		var zero T
		return zero, false
	}

	return record.Value, true
}

// After returns the oldest record with a tick strictly greater than tick.
func (h *History[T]) After(tick spoke.Tick) (Record[T], bool) {
	for n := range h.count {
		idx := h.index(n)
		if h.ticks[idx] > tick {
			return h.record(idx), true
		}
	}

	return Record[T]{}, false
}

func (h *History[T]) Latest() (Record[T], bool) {
	if h.count == 0 {
		return Record[T]{}, false
	}

	return h.record(h.index(h.count - 1)), true
}

func (h *History[T]) Oldest() (Record[T], bool) {
	if h.count == 0 {
		return Record[T]{}, false
	}

	return h.record(h.head), true
}

// Rollback discards all records with a tick greater than toTick. The memory
// of discarded records is not cleared, it is overwritten by later writes.
func (h *History[T]) Rollback(toTick spoke.Tick) {
	for h.count > 0 && h.ticks[h.index(h.count-1)] > toTick {
		h.count -= 1
	}
}

// Reset discards all records.
func (h *History[T]) Reset() {
	h.head = 0
	h.count = 0
}

// All iterates over all records from oldest to newest.
func (h *History[T]) All() iter.Seq[Record[T]] {
	return func(yield func(Record[T]) bool) {
		for n := range h.count {
			if !yield(h.record(h.index(n))) {
				return
			}
		}
	}
}

func (h *History[T]) append(tick spoke.Tick, value T, present bool) {
	if h.count > 0 {
		latest := h.ticks[h.index(h.count-1)]
		if tick <= latest {
			panic(fmt.Sprintf("tick %d recorded after tick %d", tick, latest))
		}
	}

	if h.count == len(h.ticks) {
		// evict the oldest record
		h.head = (h.head + 1) & h.mask
		h.count -= 1
	}

	idx := h.index(h.count)
	h.ticks[idx] = tick
	h.values[idx] = value
	h.present[idx] = present

	h.count += 1
}

func (h *History[T]) index(n int) int {
	return (h.head + n) & h.mask
}

func (h *History[T]) record(idx int) Record[T] {
	return Record[T]{
		Tick:    h.ticks[idx],
		Value:   h.values[idx],
		Present: h.present[idx],
	}
}
