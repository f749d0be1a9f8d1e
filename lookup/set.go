package lookup

// Set is a Lookup that only tracks the presence of ids.
// The zero value is an empty set.
type Set struct {
	items  []bool
	offset int
}

// NewSet creates a set with the given initial backing length. It panics if
// initialCapacity is not positive.
func NewSet(initialCapacity int) *Set {
	checkCapacity(initialCapacity)

	return &Set{
		items:  make([]bool, initialCapacity),
		offset: initialCapacity >> 1,
	}
}

func (s *Set) Len() int {
	return len(s.items)
}

func (s *Set) Offset() int {
	return s.offset
}

func (s *Set) Has(id int) bool {
	index := id + s.offset
	return inRange(index, len(s.items)) && s.items[index]
}

// Add inserts id and reports whether it was not present before.
func (s *Set) Add(id int) bool {
	s.ensureCapacity(id)

	index := id + s.offset
	if s.items[index] {
		return false
	}

	s.items[index] = true
	return true
}

// Remove deletes id and reports whether it was present.
func (s *Set) Remove(id int) bool {
	index := id + s.offset
	if !inRange(index, len(s.items)) || !s.items[index] {
		return false
	}

	s.items[index] = false
	return true
}

func (s *Set) Clear() {
	clear(s.items)
}

func (s *Set) ensureCapacity(id int) {
	checkId(id)

	if s.items == nil {
		s.items = make([]bool, DefaultCapacity)
		s.offset = DefaultCapacity >> 1
	}

	index := id + s.offset
	if inRange(index, len(s.items)) {
		return
	}

	newLength, newOffset := recenter(len(s.items), s.offset, index)

	items := make([]bool, newLength)
	copy(items[newOffset-s.offset:], s.items)

	s.items = items
	s.offset = newOffset
}
