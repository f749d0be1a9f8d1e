package spoke

import (
	"unsafe"
)

const wordSize = unsafe.Sizeof(uint64(0))

// inlineBuffer is a growable byte arena for values without pointers. It is backed
// by words to guarantee an alignment of eight bytes for every reserved range.
// Ranges are addressed by offset, so growing the buffer never invalidates them.
type inlineBuffer struct {
	words []uint64
	used  uintptr
}

// reserve returns the offset of a new range of size bytes with the given alignment.
func (b *inlineBuffer) reserve(size, align uintptr) uintptr {
	offset := alignUp(b.used, max(align, 1))

	end := offset + size
	if end > b.cap() {
		b.grow(end)
	}

	b.used = end

	return offset
}

func (b *inlineBuffer) cap() uintptr {
	return uintptr(len(b.words)) * wordSize
}

func (b *inlineBuffer) grow(required uintptr) {
	newWords := max(len(b.words)*2, 8)
	for uintptr(newWords)*wordSize < required {
		newWords *= 2
	}

	words := make([]uint64, newWords)
	copy(words, b.words)

	b.words = words
}

func (b *inlineBuffer) ptrTo(offset uintptr) unsafe.Pointer {
	if offset >= b.used {
		panic("out of bounds")
	}

	base := unsafe.Pointer(unsafe.SliceData(b.words))
	return unsafe.Add(base, offset)
}

// Len returns the number of bytes in use.
func (b *inlineBuffer) Len() int {
	return int(b.used)
}

func alignUp(value, align uintptr) uintptr {
	return (value + align - 1) &^ (align - 1)
}

func writeInline[T any](b *inlineBuffer, offset uintptr, value T) {
	if unsafe.Sizeof(value) == 0 {
		return
	}

	*(*T)(b.ptrTo(offset)) = value
}

func readInline[T any](b *inlineBuffer, offset uintptr) T {
	var value T
	if unsafe.Sizeof(value) == 0 {
		return value
	}

	return *(*T)(b.ptrTo(offset))
}
