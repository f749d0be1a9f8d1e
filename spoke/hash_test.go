package spoke

import (
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"
)

type Inventory struct {
	Owner  *Name
	Items  []Position
	Tags   []string
	Counts map[string]int32
	Extra  any
}

type Callback struct {
	Fn func()
}

type Versioned struct {
	Version int32
	Notes   []string
}

func (v *Versioned) Checksum(digest *xxhash.Digest) {
	// notes are informational only
	writeUint64(digest, uint64(v.Version))
}

func checksumOfValue[T any](value T) uint64 {
	r := NewRegistry()
	Register[T](r)

	s := NewStore(r)
	Add(s, value)

	return checksumOf(s)
}

func TestStore_ChecksumOwnedString(t *testing.T) {
	require.NotEqual(t, checksumOfValue(Name{Value: "alice"}), checksumOfValue(Name{Value: "mallory"}))
	require.Equal(t, checksumOfValue(Name{Value: "alice"}), checksumOfValue(Name{Value: "alice"}))

	// the length separates the strings of adjacent fields
	type Pair struct{ A, B string }
	require.NotEqual(t, checksumOfValue(Pair{A: "ab", B: "c"}), checksumOfValue(Pair{A: "a", B: "bc"}))
}

func TestStore_ChecksumOwnedNested(t *testing.T) {
	base := func() Inventory {
		return Inventory{
			Owner:  &Name{Value: "alice"},
			Items:  []Position{{X: 1, Y: 2}, {X: 3, Y: 4}},
			Tags:   []string{"a", "b"},
			Counts: map[string]int32{"gold": 3, "wood": 7, "iron": 1},
			Extra:  Position{X: 9},
		}
	}

	reference := checksumOfValue(base())

	// map iteration order does not matter
	for range 10 {
		require.Equal(t, reference, checksumOfValue(base()))
	}

	changes := []func(inv *Inventory){
		func(inv *Inventory) { inv.Owner.Value = "bob" },
		func(inv *Inventory) { inv.Owner = nil },
		func(inv *Inventory) { inv.Items[1].Y = 5 },
		func(inv *Inventory) { inv.Items = inv.Items[:1] },
		func(inv *Inventory) { inv.Tags[0] = "c" },
		func(inv *Inventory) { inv.Counts["gold"] = 4 },
		func(inv *Inventory) { delete(inv.Counts, "iron") },
		func(inv *Inventory) { inv.Extra = Velocity{X: 9} },
		func(inv *Inventory) { inv.Extra = nil },
	}

	for idx, change := range changes {
		inv := base()
		change(&inv)
		require.NotEqual(t, reference, checksumOfValue(inv), "change %d", idx)
	}
}

func TestStore_ChecksumUsesChecksummer(t *testing.T) {
	a := checksumOfValue(Versioned{Version: 1, Notes: []string{"x"}})
	b := checksumOfValue(Versioned{Version: 1, Notes: []string{"y"}})
	c := checksumOfValue(Versioned{Version: 2, Notes: []string{"x"}})

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestStore_ChecksumUnsupportedKindPanics(t *testing.T) {
	require.PanicsWithValue(t, "can not checksum value of kind func in type func()", func() {
		checksumOfValue(Callback{Fn: func() {}})
	})
}

func TestStore_ChecksumCyclicPanics(t *testing.T) {
	type Node struct {
		Next *Node
	}

	node := &Node{}
	node.Next = node

	require.Panics(t, func() {
		checksumOfValue(*node)
	})
}
