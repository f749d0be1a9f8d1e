package spoke

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_KeysInRegistrationOrder(t *testing.T) {
	r := NewRegistry()

	require.Equal(t, TypeKey(0), Register[Position](r))
	require.Equal(t, TypeKey(1), Register[Name](r))
	require.Equal(t, TypeKey(0), Register[Position](r))

	require.Equal(t, TypeKey(1), KeyOf[Name](r))
	require.Equal(t, 2, r.Len())

	_, ok := TryKeyOf[Velocity](r)
	require.False(t, ok)

	require.PanicsWithValue(t, "type spoke.Velocity is not registered", func() {
		KeyOf[Velocity](r)
	})
}

func TestRegistry_Freeze(t *testing.T) {
	r := NewRegistry()
	Register[Position](r)
	r.Freeze()

	// known types can still be resolved
	require.Equal(t, TypeKey(0), Register[Position](r))

	require.Panics(t, func() {
		Register[Name](r)
	})
}

func TestRegistry_Fingerprint(t *testing.T) {
	a := NewRegistry()
	Register[Position](a)
	Register[Name](a)

	b := NewRegistry()
	Register[Position](b)
	Register[Name](b)

	c := NewRegistry()
	Register[Name](c)
	Register[Position](c)

	require.Equal(t, a.Fingerprint(), b.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestRegistry_Info(t *testing.T) {
	r := testRegistry()

	pos := r.Info(KeyOf[Position](r))
	require.True(t, pos.Inline())
	require.Equal(t, "spoke.Position", pos.String())

	name := r.Info(KeyOf[Name](r))
	require.True(t, name.HasPointers)
	require.False(t, name.Inline())

	require.Panics(t, func() { r.Info(100) })
}

func TestTypeHasPointers(t *testing.T) {
	type Inner struct {
		A int
		B [2]float32
	}

	type WithSlice struct {
		Inner Inner
		Items []int
	}

	require.False(t, typeHasPointers(reflect.TypeFor[Inner]()))
	require.False(t, typeHasPointers(reflect.TypeFor[[0]*int]()))
	require.True(t, typeHasPointers(reflect.TypeFor[WithSlice]()))
	require.True(t, typeHasPointers(reflect.TypeFor[[1]string]()))
	require.True(t, typeHasPointers(reflect.TypeFor[any]()))
	require.True(t, typeHasPointers(reflect.TypeFor[map[int]int]()))
}

func TestMemorySlicesOf(t *testing.T) {
	type Padded struct {
		A int8
		B int64
		C int8
	}

	slices := memorySlicesOf(reflect.TypeFor[Padded](), 0, nil)
	require.Equal(t, []memorySlice{{Start: 0, Len: 1}, {Start: 8, Len: 9}}, slices)

	slices = memorySlicesOf(reflect.TypeFor[Position](), 0, nil)
	require.Equal(t, []memorySlice{{Start: 0, Len: 8}}, slices)

	require.Empty(t, memorySlicesOf(reflect.TypeFor[Marker](), 0, nil))
}
