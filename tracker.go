package lockstep

import (
	"fmt"
	"reflect"

	"github.com/oliverbestmann/lockstep/history"
	"github.com/oliverbestmann/lockstep/lookup"
	"github.com/oliverbestmann/lockstep/spoke"
)

type tracker interface {
	// restore resets every entity to the state it had at the end of the target tick
	// and discards all newer history.
	restore(sim *Simulation, target spoke.Tick)
}

// typedTracker keeps one history per entity for values of type T. A record with
// tick t holds the value as it was at the end of tick t. It is written right before
// the first mutation of the value during tick t+1.
type typedTracker[T any] struct {
	capacity  int
	histories lookup.Lookup[*history.History[T]]
}

func (tr *typedTracker[T]) remember(entityId spoke.EntityId, store *spoke.Store, tick spoke.Tick) {
	h, ok := tr.histories.TryGet(int(entityId))
	if !ok {
		h = history.New[T](tr.capacity)
		tr.histories.Set(int(entityId), h)
	}

	if latest, ok := h.Latest(); ok && latest.Tick >= tick-1 {
		// already recorded during this tick
		return
	}

	if value, ok := spoke.TryGet[T](store); ok {
		h.Set(tick-1, value)
	} else {
		h.SetAbsent(tick-1)
	}
}

func (tr *typedTracker[T]) restore(sim *Simulation, target spoke.Tick) {
	for entityId, h := range tr.histories.All() {
		// the first record at or after the target tick holds the value at the end
		// of the target tick. Without such a record, the value has not changed since.
		record, ok := h.After(target - 1)
		if !ok {
			continue
		}

		store := sim.storeOf(spoke.EntityId(entityId))
		if record.Present {
			spoke.Add(store, record.Value)
		} else {
			spoke.Remove[T](store)
		}

		h.Rollback(target)
	}
}

func trackerOf[T any](sim *Simulation) *typedTracker[T] {
	key, ok := spoke.TryKeyOf[T](sim.registry)
	if ok {
		if tr, ok := sim.trackers.TryGet(int(key)); ok {
			return tr.(*typedTracker[T])
		}
	}

	panic(fmt.Sprintf("type %s is not tracked", reflect.TypeFor[T]()))
}
