// Package lockstep drives a deterministic simulation from the commands of all clients.
//
// Every peer of a session runs its own Simulation and feeds it the same commands. As
// commands are applied per tick in ascending client id order, and every mutation of
// tracked state is recorded into a history, a command arriving late only causes the
// simulation to restore the affected ticks and replay them. All peers end up with
// bit-identical state, which can be compared using Checksum.
package lockstep

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/oliverbestmann/lockstep/command"
	"github.com/oliverbestmann/lockstep/internal/typedpool"
	"github.com/oliverbestmann/lockstep/lookup"
	"github.com/oliverbestmann/lockstep/spoke"
)

// WorldEntity holds the state shared by the whole simulation, such as the IdReserve
// used by Context.Spawn and the RandomSeed.
const WorldEntity = spoke.EntityId(0)

var (
	ErrTooLate        = errors.New("command is older than the history window")
	ErrTooEarly       = errors.New("command is too far in the future")
	ErrDuplicate      = errors.New("client already sent a command of this type for the tick")
	ErrUnknownCommand = errors.New("no handler for command type")
)

var digests = typedpool.New((*xxhash.Digest).Reset)

// System runs once per tick, after all commands of the tick have been handled.
type System func(ctx *Context)

type tickCommands struct {
	tick     spoke.Tick
	commands *command.Collection
}

type Simulation struct {
	_ noCopy

	config   Config
	registry *spoke.Registry

	// one store per entity
	stores lookup.Lookup[*spoke.Store]

	// trackers by type key, and in the order they were registered
	trackers     lookup.Lookup[tracker]
	trackerOrder []tracker

	handlers    []handler
	handlerKeys lookup.Set

	systems []System

	// ring of commands, indexed by WrapTick
	inbox []tickCommands

	// the last tick that was executed
	tick spoke.Tick

	started  bool
	stepping bool

	rollbackPending bool
	rollbackTarget  spoke.Tick

	stats Stats
	ctx   Context
}

// NewSimulation creates a new simulation. A nil registry is replaced with a new one.
// The registry is frozen with the first call to Step.
func NewSimulation(config Config, registry *spoke.Registry) *Simulation {
	if err := config.Validate(); err != nil {
		panic(err)
	}

	if registry == nil {
		registry = spoke.NewRegistry()
	}

	sim := &Simulation{
		config:   config,
		registry: registry,
		inbox:    make([]tickCommands, config.HistoryTicks),
		tick:     spoke.NoTick,
	}

	for idx := range sim.inbox {
		sim.inbox[idx] = tickCommands{
			tick:     spoke.NoTick,
			commands: command.NewCollection(registry),
		}
	}

	Track[spoke.IdReserve](sim)
	Track[RandomSeed](sim)

	Insert(sim, WorldEntity, spoke.NewIdReserve(WorldEntity+1, math.MaxInt32-1))
	Insert(sim, WorldEntity, NewRandomSeed(0))

	return sim
}

func (sim *Simulation) Config() Config {
	return sim.config
}

func (sim *Simulation) Registry() *spoke.Registry {
	return sim.registry
}

// Tick returns the last tick that was executed, or spoke.NoTick before the first Step.
func (sim *Simulation) Tick() spoke.Tick {
	return sim.tick
}

func (sim *Simulation) Stats() Stats {
	return sim.stats
}

// Store returns the store of the given entity. The store must not be modified.
func (sim *Simulation) Store(entityId spoke.EntityId) (*spoke.Store, bool) {
	return sim.stores.TryGet(int(entityId))
}

// Track registers T as part of the simulated state. Every mutation of a value of
// type T is recorded, so that it can be restored when a tick is replayed.
func Track[T any](sim *Simulation) {
	sim.checkSetup()

	key := spoke.Register[T](sim.registry)
	if sim.trackers.ContainsKey(int(key)) {
		return
	}

	tr := &typedTracker[T]{capacity: sim.config.HistoryTicks}
	sim.trackers.Set(int(key), tr)
	sim.trackerOrder = append(sim.trackerOrder, tr)
}

// Handle registers the handler for commands of type D. Handlers run in the order
// they were registered, each one receiving the commands of a tick in ascending
// client id order.
func Handle[D any](sim *Simulation, fn func(ctx *Context, cmd command.Command[D])) {
	sim.checkSetup()

	key := spoke.Register[D](sim.registry)
	if !sim.handlerKeys.Add(int(key)) {
		panic(fmt.Sprintf("handler for command type %s already registered", reflect.TypeFor[D]()))
	}

	sim.handlers = append(sim.handlers, &typedHandler[D]{fn: fn})
}

// AddSystem adds a system that runs once per tick after all command handlers.
func (sim *Simulation) AddSystem(system System) {
	sim.checkSetup()
	sim.systems = append(sim.systems, system)
}

// Insert sets the initial value of T for an entity before the simulation starts.
func Insert[T any](sim *Simulation, entityId spoke.EntityId, value T) {
	sim.checkSetup()
	spoke.Add(sim.ensureStore(entityId), value)
}

// Spawn allocates a new entity before the simulation starts.
func (sim *Simulation) Spawn() spoke.EntityId {
	sim.checkSetup()

	world := sim.ensureStore(WorldEntity)

	reserve, _ := spoke.TryGet[spoke.IdReserve](world)
	entityId := reserve.Next()
	spoke.Add(world, reserve)

	sim.ensureStore(entityId)

	return entityId
}

// Submit queues a command for the tick it names. A command for a tick that was
// already executed causes the simulation to replay that tick with the next call to
// Step. Commands outside the history window are rejected.
func Submit[D any](sim *Simulation, cmd command.Command[D]) error {
	if sim.stepping {
		panic("commands can not be submitted while a tick is executed")
	}

	key, ok := spoke.TryKeyOf[D](sim.registry)
	if !ok || !sim.handlerKeys.Has(int(key)) {
		return fmt.Errorf("command of type %s: %w", reflect.TypeFor[D](), ErrUnknownCommand)
	}

	if err := sim.checkWindow(cmd.Tick); err != nil {
		if errors.Is(err, ErrTooLate) {
			slog.Warn(
				"Dropping late command",
				slog.String("type", reflect.TypeFor[D]().String()),
				slog.Any("client", cmd.ClientId),
				slog.Any("tick", cmd.Tick),
				slog.Any("currentTick", sim.tick),
			)
		}

		return fmt.Errorf("command of client %d for tick %d: %w", cmd.ClientId, cmd.Tick, err)
	}

	commands := sim.commandsAt(cmd.Tick)

	if _, found := command.Get[D](commands, cmd.ClientId); found {
		return fmt.Errorf("command of type %s of client %d for tick %d: %w",
			reflect.TypeFor[D](), cmd.ClientId, cmd.Tick, ErrDuplicate)
	}

	command.Add(commands, cmd)

	if cmd.Tick <= sim.tick {
		sim.scheduleRollback(cmd.Tick - 1)
	}

	return nil
}

// Step replays ticks affected by late commands and then executes the next tick.
func (sim *Simulation) Step() {
	if !sim.started {
		sim.registry.Freeze()
		sim.started = true
	}

	if sim.rollbackPending {
		sim.resimulate()
	}

	watch := startStopwatch()

	sim.tick += 1
	sim.runTick(sim.tick)

	watch.StopInto(&sim.stats.Step)
}

// Checksum hashes the state of all entities in ascending entity id order.
func (sim *Simulation) Checksum() uint64 {
	digest := digests.Get()
	defer digests.Put(digest)

	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], sim.registry.Fingerprint())
	_, _ = digest.Write(scratch[:])

	for entityId, store := range sim.stores.All() {
		if store.Len() == 0 {
			continue
		}

		binary.LittleEndian.PutUint32(scratch[:4], uint32(entityId))
		_, _ = digest.Write(scratch[:4])

		store.Checksum(digest)
	}

	return digest.Sum64()
}

func (sim *Simulation) checkSetup() {
	if sim.started {
		panic("simulation has already started")
	}
}

// checkWindow verifies that a command for the given tick can still be applied
// and that its slot in the inbox ring is not in use by another tick.
func (sim *Simulation) checkWindow(tick spoke.Tick) error {
	half := spoke.Tick(sim.config.HistoryTicks / 2)

	oldest := max(sim.tick-half+1, 0)
	if tick < oldest {
		return ErrTooLate
	}

	if tick > sim.tick+half {
		return ErrTooEarly
	}

	return nil
}

func (sim *Simulation) commandsAt(tick spoke.Tick) *command.Collection {
	slot := &sim.inbox[WrapTick(tick, len(sim.inbox))]

	if slot.tick != tick {
		// the slot still holds commands of a tick that left the window
		slot.commands.Clear()
		slot.tick = tick
	}

	return slot.commands
}

func (sim *Simulation) scheduleRollback(target spoke.Tick) {
	if sim.rollbackPending && sim.rollbackTarget <= target {
		return
	}

	sim.rollbackPending = true
	sim.rollbackTarget = target
}

func (sim *Simulation) resimulate() {
	target := sim.rollbackTarget
	sim.rollbackPending = false

	watch := startStopwatch()

	for _, tr := range sim.trackerOrder {
		tr.restore(sim, target)
	}

	for tick := target + 1; tick <= sim.tick; tick++ {
		sim.runTick(tick)
		sim.stats.ResimulatedTicks += 1
	}

	watch.StopInto(&sim.stats.Rollback)

	slog.Info(
		"Resimulated ticks after late command",
		slog.Any("from", target+1),
		slog.Any("to", sim.tick),
		slog.Duration("duration", sim.stats.Rollback.Latest),
	)
}

func (sim *Simulation) runTick(tick spoke.Tick) {
	sim.stepping = true
	defer func() { sim.stepping = false }()

	sim.ctx = Context{sim: sim, tick: tick}
	ctx := &sim.ctx

	commands := sim.commandsAt(tick)
	for _, h := range sim.handlers {
		h.apply(ctx, commands)
	}

	for _, system := range sim.systems {
		system(ctx)
	}
}

func (sim *Simulation) ensureStore(entityId spoke.EntityId) *spoke.Store {
	store, ok := sim.stores.TryGet(int(entityId))
	if !ok {
		store = spoke.NewStore(sim.registry)
		sim.stores.Set(int(entityId), store)
	}

	return store
}

func (sim *Simulation) storeOf(entityId spoke.EntityId) *spoke.Store {
	store, ok := sim.stores.TryGet(int(entityId))
	if !ok {
		panic(fmt.Sprintf("entity %s does not exist", entityId))
	}

	return store
}

type handler interface {
	apply(ctx *Context, commands *command.Collection)
}

type typedHandler[D any] struct {
	fn func(ctx *Context, cmd command.Command[D])
}

func (h *typedHandler[D]) apply(ctx *Context, commands *command.Collection) {
	for _, cmd := range command.Ordered[D](commands) {
		h.fn(ctx, cmd)
	}
}
