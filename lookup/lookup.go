// Package lookup provides array backed maps for dense signed integer keys.
//
// Keys are translated to array positions by adding an offset. Whenever a key falls
// outside of the backing array, the array is doubled and the old contents are moved
// to the center of the new array, so keys may grow in both directions without hashing.
package lookup

import (
	"fmt"
	"iter"
)

type slot[T any] struct {
	has   bool
	value T
}

// Lookup maps int ids to values of type T. The zero value is an empty
// lookup with DefaultCapacity, ready to use.
type Lookup[T any] struct {
	slots  []slot[T]
	offset int
	count  int
}

// New creates a Lookup with the given initial backing length. The id zero starts in
// the middle of the backing array. New panics if initialCapacity is not positive.
func New[T any](initialCapacity int) *Lookup[T] {
	checkCapacity(initialCapacity)

	return &Lookup[T]{
		slots:  make([]slot[T], initialCapacity),
		offset: initialCapacity >> 1,
	}
}

// Len returns the length of the backing array.
func (l *Lookup[T]) Len() int {
	return len(l.slots)
}

// Offset returns the value added to an id to get its position in the backing array.
func (l *Lookup[T]) Offset() int {
	return l.offset
}

// Count returns the number of ids that currently hold a value.
func (l *Lookup[T]) Count() int {
	return l.count
}

// Get returns the value for id. It panics if the id holds no value.
func (l *Lookup[T]) Get(id int) T {
	index := id + l.offset
	if !inRange(index, len(l.slots)) || !l.slots[index].has {
		panic(fmt.Sprintf("key %d not found", id))
	}

	return l.slots[index].value
}

// Ref returns a pointer to the value stored for id, or nil if the id holds no value.
// The pointer is invalidated by the next call to Set that grows the lookup.
func (l *Lookup[T]) Ref(id int) *T {
	index := id + l.offset
	if !inRange(index, len(l.slots)) || !l.slots[index].has {
		return nil
	}

	return &l.slots[index].value
}

func (l *Lookup[T]) TryGet(id int) (T, bool) {
	index := id + l.offset
	if !inRange(index, len(l.slots)) || !l.slots[index].has {
		var zero T
		return zero, false
	}

	return l.slots[index].value, true
}

func (l *Lookup[T]) ContainsKey(id int) bool {
	index := id + l.offset
	return inRange(index, len(l.slots)) && l.slots[index].has
}

// Set stores value for id, growing the backing array if required.
func (l *Lookup[T]) Set(id int, value T) {
	l.ensureCapacity(id)

	target := &l.slots[id+l.offset]
	if !target.has {
		target.has = true
		l.count += 1
	}

	target.value = value
}

// Remove deletes the value for id and reports whether there was one.
func (l *Lookup[T]) Remove(id int) bool {
	index := id + l.offset
	if !inRange(index, len(l.slots)) || !l.slots[index].has {
		return false
	}

	l.slots[index] = slot[T]{}
	l.count -= 1

	return true
}

// Clear removes all values. The backing array keeps its size.
func (l *Lookup[T]) Clear() {
	clear(l.slots)
	l.count = 0
}

// All iterates over all ids holding a value in ascending order.
func (l *Lookup[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for index := range l.slots {
			slot := &l.slots[index]
			if !slot.has {
				continue
			}

			if !yield(index-l.offset, slot.value) {
				return
			}
		}
	}
}

func (l *Lookup[T]) ensureCapacity(id int) {
	checkId(id)

	if l.slots == nil {
		l.slots = make([]slot[T], DefaultCapacity)
		l.offset = DefaultCapacity >> 1
	}

	index := id + l.offset
	if inRange(index, len(l.slots)) {
		return
	}

	newLength, newOffset := recenter(len(l.slots), l.offset, index)

	slots := make([]slot[T], newLength)
	copy(slots[newOffset-l.offset:], l.slots)

	l.slots = slots
	l.offset = newOffset
}
