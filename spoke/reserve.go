package spoke

import "fmt"

// IdReserve hands out entity ids from a contiguous block. As a plain value it can be
// kept inside a Store and rolled back together with the rest of the state.
type IdReserve struct {
	First   EntityId
	Count   int32
	Current EntityId
}

func NewIdReserve(first EntityId, count int32) IdReserve {
	return IdReserve{First: first, Count: count, Current: first}
}

// Remaining returns the number of ids that can still be handed out.
func (r IdReserve) Remaining() int {
	return int(r.First) + int(r.Count) - int(r.Current)
}

// Next returns the next free id. It panics if the reserve is exhausted.
func (r *IdReserve) Next() EntityId {
	if r.Remaining() <= 0 {
		panic(fmt.Sprintf("id reserve [%d, %d) exhausted", r.First, int(r.First)+int(r.Count)))
	}

	id := r.Current
	r.Current += 1

	return id
}
