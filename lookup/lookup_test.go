package lookup

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup_InitialOffset(t *testing.T) {
	l := New[string](16)
	require.Equal(t, 16, l.Len())
	require.Equal(t, 8, l.Offset())
}

func TestLookup_GrowNegative(t *testing.T) {
	l := New[string](16)

	for id := -8; id < 8; id++ {
		l.Set(id, string(rune('a'+id+8)))
	}

	require.Equal(t, 16, l.Len())

	// one below the initial range forces a single doubling
	l.Set(-9, "x")

	require.Equal(t, 32, l.Len())
	require.Equal(t, 16, l.Offset())
	require.Equal(t, "x", l.Get(-9))

	for id := -8; id < 8; id++ {
		require.Equal(t, string(rune('a'+id+8)), l.Get(id))
	}
}

func TestLookup_GrowBothDirections(t *testing.T) {
	l := New[int](4)

	l.Set(1000, 1)
	l.Set(-1000, 2)

	require.Equal(t, 1, l.Get(1000))
	require.Equal(t, 2, l.Get(-1000))
	require.Equal(t, 2, l.Count())
}

func TestLookup_RandomGrowthKeepsValues(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	const n = 500

	l := New[int](1)
	expected := map[int]int{}

	for range 500 {
		id := rng.IntN(2*n+1) - n
		value := rng.Int()

		l.Set(id, value)
		expected[id] = value

		for id, value := range expected {
			actual, ok := l.TryGet(id)
			require.True(t, ok)
			require.Equal(t, value, actual)
		}
	}

	require.Equal(t, len(expected), l.Count())
}

func TestLookup_DistinguishesZeroFromMissing(t *testing.T) {
	l := New[int](16)
	l.Set(3, 0)

	value, ok := l.TryGet(3)
	require.True(t, ok)
	require.Equal(t, 0, value)

	_, ok = l.TryGet(4)
	require.False(t, ok)

	// out of range queries do not grow
	_, ok = l.TryGet(-100)
	require.False(t, ok)
	require.False(t, l.ContainsKey(100))
	require.Equal(t, 16, l.Len())
}

func TestLookup_GetMissingPanics(t *testing.T) {
	l := New[int](16)

	require.PanicsWithValue(t, "key 5 not found", func() {
		l.Get(5)
	})

	require.PanicsWithValue(t, "key 500 not found", func() {
		l.Get(500)
	})
}

func TestLookup_RemoveAndClear(t *testing.T) {
	l := New[*int](16)

	value := 5
	l.Set(1, &value)
	l.Set(2, &value)

	require.True(t, l.Remove(1))
	require.False(t, l.Remove(1))
	require.False(t, l.ContainsKey(1))
	require.Nil(t, l.Ref(1))

	l.Set(-30, &value)
	length := l.Len()

	l.Clear()
	require.Equal(t, 0, l.Count())
	require.Equal(t, length, l.Len())
	require.False(t, l.ContainsKey(2))
	require.False(t, l.ContainsKey(-30))

	// references are dropped
	for _, slot := range l.slots {
		require.Nil(t, slot.value)
	}
}

func TestLookup_AllAscending(t *testing.T) {
	l := New[int](2)

	for _, id := range []int{5, -3, 0, 12, -7} {
		l.Set(id, id*10)
	}

	var ids []int
	for id, value := range l.All() {
		require.Equal(t, id*10, value)
		ids = append(ids, id)
	}

	require.Equal(t, []int{-7, -3, 0, 5, 12}, ids)
}

func TestLookup_ZeroValue(t *testing.T) {
	var l Lookup[int]

	_, ok := l.TryGet(0)
	require.False(t, ok)

	l.Set(-20, 1)
	require.Equal(t, 1, l.Get(-20))
}

func TestLookup_InvalidCapacity(t *testing.T) {
	require.Panics(t, func() { New[int](0) })
	require.Panics(t, func() { New[int](-1) })
	require.Panics(t, func() { NewSet(0) })
	require.Panics(t, func() { New2D[int](0) })
}

func TestLookup_IdOutOfRange(t *testing.T) {
	l := New[int](16)
	l.Set(0, 1)

	tooLarge := fmt.Sprintf("id %d out of range [%d, %d]", math.MaxInt, math.MinInt32, math.MaxInt32)
	require.PanicsWithValue(t, tooLarge, func() {
		l.Set(math.MaxInt, 3)
	})

	// reads of ids outside the range never wrap onto stored values
	_, ok := l.TryGet(math.MaxInt)
	require.False(t, ok)
	require.False(t, l.ContainsKey(math.MinInt))
	require.Equal(t, 16, l.Len())

	var s Set
	require.Panics(t, func() {
		s.Add(math.MinInt32 - 1)
	})

	grid := New2D[int](8)
	require.Panics(t, func() {
		grid.Set(0, math.MaxInt32+1, 1)
	})
}

func TestRecenter(t *testing.T) {
	length, offset := recenter(16, 8, -1)
	require.Equal(t, 32, length)
	require.Equal(t, 16, offset)

	length, offset = recenter(16, 8, 16)
	require.Equal(t, 32, length)
	require.Equal(t, 16, offset)

	length, offset = recenter(16, 8, 100)
	require.Equal(t, 128, length)
	require.Equal(t, 64, offset)

	length, offset = recenter(1, 0, -1)
	require.Equal(t, 4, length)
	require.Equal(t, 1, offset)
}

func TestSet(t *testing.T) {
	s := NewSet(4)

	require.True(t, s.Add(-10))
	require.False(t, s.Add(-10))
	require.True(t, s.Add(10))

	require.True(t, s.Has(-10))
	require.True(t, s.Has(10))
	require.False(t, s.Has(0))

	require.True(t, s.Remove(10))
	require.False(t, s.Remove(10))
	require.False(t, s.Has(10))

	s.Clear()
	require.False(t, s.Has(-10))
}

func TestLookup2D(t *testing.T) {
	l := New2D[string](8)

	for x := -4; x < 4; x++ {
		for y := -4; y < 4; y++ {
			l.Set(x, y, "in")
		}
	}

	l.Set(-5, 20, "out")

	require.Equal(t, 16, l.Width())
	require.Equal(t, 64, l.Height())
	require.Equal(t, "out", l.Get(-5, 20))

	for x := -4; x < 4; x++ {
		for y := -4; y < 4; y++ {
			require.Equal(t, "in", l.Get(x, y))
		}
	}

	require.False(t, l.ContainsKey(-5, 19))
	require.True(t, l.Remove(-5, 20))
	require.False(t, l.Remove(-5, 20))

	_, ok := l.TryGet(1000, 0)
	require.False(t, ok)

	require.PanicsWithValue(t, "key (1000,0) not found", func() {
		l.Get(1000, 0)
	})

	l.Clear()
	require.False(t, l.ContainsKey(0, 0))
}

func BenchmarkLookupGet(b *testing.B) {
	l := New[int](1024)
	for id := -512; id < 512; id++ {
		l.Set(id, id)
	}

	var sum int

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		for id := -512; id < 512; id++ {
			sum += l.Get(id)
		}
	}

	_ = sum
}
