package spoke

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInlineBuffer_Reserve(t *testing.T) {
	var b inlineBuffer

	first := b.reserve(1, 1)
	second := b.reserve(8, 8)
	third := b.reserve(4, 4)

	require.Equal(t, uintptr(0), first)
	require.Equal(t, uintptr(8), second)
	require.Equal(t, uintptr(16), third)
	require.Equal(t, 20, b.Len())
}

func TestInlineBuffer_GrowKeepsContents(t *testing.T) {
	var b inlineBuffer

	offset := b.reserve(8, 8)
	writeInline(&b, offset, int64(42))

	capBefore := b.cap()
	big := b.reserve(1024, 8)
	require.Greater(t, b.cap(), capBefore)

	writeInline(&b, big, [128]int64{1: 7})

	require.Equal(t, int64(42), readInline[int64](&b, offset))
	require.Equal(t, int64(7), readInline[[128]int64](&b, big)[1])
}

func TestInlineBuffer_OutOfBounds(t *testing.T) {
	var b inlineBuffer
	b.reserve(8, 8)

	require.PanicsWithValue(t, "out of bounds", func() {
		b.ptrTo(8)
	})
}
