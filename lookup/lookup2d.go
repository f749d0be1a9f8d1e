package lookup

import "fmt"

// Lookup2D maps (x, y) coordinates to values. Both axes grow independently
// using the same centered doubling as Lookup.
type Lookup2D[T any] struct {
	slots []slot[T]

	width, height    int
	offsetX, offsetY int
}

// New2D creates a grid of initialSize x initialSize cells centered on (0, 0).
// It panics if initialSize is not positive.
func New2D[T any](initialSize int) *Lookup2D[T] {
	checkCapacity(initialSize)

	return &Lookup2D[T]{
		slots:   make([]slot[T], initialSize*initialSize),
		width:   initialSize,
		height:  initialSize,
		offsetX: initialSize >> 1,
		offsetY: initialSize >> 1,
	}
}

func (l *Lookup2D[T]) Width() int {
	return l.width
}

func (l *Lookup2D[T]) Height() int {
	return l.height
}

func (l *Lookup2D[T]) Offset() (x, y int) {
	return l.offsetX, l.offsetY
}

func (l *Lookup2D[T]) Get(x, y int) T {
	index, ok := l.toIndex(x, y)
	if !ok || !l.slots[index].has {
		panic(fmt.Sprintf("key (%d,%d) not found", x, y))
	}

	return l.slots[index].value
}

func (l *Lookup2D[T]) TryGet(x, y int) (T, bool) {
	index, ok := l.toIndex(x, y)
	if !ok || !l.slots[index].has {
		var zero T
		return zero, false
	}

	return l.slots[index].value, true
}

func (l *Lookup2D[T]) ContainsKey(x, y int) bool {
	index, ok := l.toIndex(x, y)
	return ok && l.slots[index].has
}

func (l *Lookup2D[T]) Set(x, y int, value T) {
	l.ensureCapacity(x, y)

	index, _ := l.toIndex(x, y)
	l.slots[index] = slot[T]{has: true, value: value}
}

func (l *Lookup2D[T]) Remove(x, y int) bool {
	index, ok := l.toIndex(x, y)
	if !ok || !l.slots[index].has {
		return false
	}

	l.slots[index] = slot[T]{}
	return true
}

func (l *Lookup2D[T]) Clear() {
	clear(l.slots)
}

func (l *Lookup2D[T]) toIndex(x, y int) (int, bool) {
	ix := x + l.offsetX
	iy := y + l.offsetY

	if !inRange(ix, l.width) || !inRange(iy, l.height) {
		return 0, false
	}

	return iy*l.width + ix, true
}

func (l *Lookup2D[T]) ensureCapacity(x, y int) {
	checkId(x)
	checkId(y)

	if l.slots == nil {
		*l = *New2D[T](DefaultCapacity)
	}

	ix := x + l.offsetX
	iy := y + l.offsetY

	if inRange(ix, l.width) && inRange(iy, l.height) {
		return
	}

	newWidth, newOffsetX := recenter(l.width, l.offsetX, ix)
	newHeight, newOffsetY := recenter(l.height, l.offsetY, iy)

	slots := make([]slot[T], newWidth*newHeight)

	dx := newOffsetX - l.offsetX
	dy := newOffsetY - l.offsetY

	// relocate row by row
	for row := range l.height {
		source := l.slots[row*l.width : (row+1)*l.width]
		target := (row+dy)*newWidth + dx
		copy(slots[target:], source)
	}

	l.slots = slots
	l.width, l.height = newWidth, newHeight
	l.offsetX, l.offsetY = newOffsetX, newOffsetY
}
