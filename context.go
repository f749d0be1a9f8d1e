package lockstep

import (
	"iter"

	"github.com/oliverbestmann/lockstep/spoke"
)

// Context gives command handlers and systems access to the state of the
// simulation during a tick. It must not be retained after the handler returns.
type Context struct {
	sim  *Simulation
	tick spoke.Tick
}

// Tick returns the tick being executed.
func (ctx *Context) Tick() spoke.Tick {
	return ctx.tick
}

// Read returns the value of T of an entity.
func Read[T any](ctx *Context, entityId spoke.EntityId) (T, bool) {
	store, ok := ctx.sim.stores.TryGet(int(entityId))
	if !ok {
		var zero T
		return zero, false
	}

	return spoke.TryGet[T](store)
}

// Write sets the value of T of an entity. T must be tracked.
func Write[T any](ctx *Context, entityId spoke.EntityId, value T) {
	tr := trackerOf[T](ctx.sim)
	store := ctx.sim.storeOf(entityId)

	tr.remember(entityId, store, ctx.tick)
	spoke.Add(store, value)
}

// Delete removes the value of T of an entity. T must be tracked.
func Delete[T any](ctx *Context, entityId spoke.EntityId) {
	tr := trackerOf[T](ctx.sim)
	store := ctx.sim.storeOf(entityId)

	if !spoke.Has[T](store) {
		return
	}

	tr.remember(entityId, store, ctx.tick)
	spoke.Remove[T](store)
}

// Each iterates over all entities holding a value of type T in ascending entity id
// order. Entities must not be spawned while iterating.
func Each[T any](ctx *Context) iter.Seq2[spoke.EntityId, T] {
	return func(yield func(spoke.EntityId, T) bool) {
		for entityId, store := range ctx.sim.stores.All() {
			value, ok := spoke.TryGet[T](store)
			if !ok {
				continue
			}

			if !yield(spoke.EntityId(entityId), value) {
				return
			}
		}
	}
}

// Spawn allocates a new entity. Entity ids are part of the simulated state: after
// a rollback, the replayed ticks hand out the same ids again.
func (ctx *Context) Spawn() spoke.EntityId {
	reserve, _ := Read[spoke.IdReserve](ctx, WorldEntity)
	entityId := reserve.Next()
	Write(ctx, WorldEntity, reserve)

	ctx.sim.ensureStore(entityId)

	return entityId
}

// RandomRange returns a deterministic random value in [min, max).
func (ctx *Context) RandomRange(min, max int32) int32 {
	seed, _ := Read[RandomSeed](ctx, WorldEntity)
	value := seed.Range(min, max)
	Write(ctx, WorldEntity, seed)

	return value
}
