package main

import (
	"fmt"

	"github.com/oliverbestmann/lockstep"
	"github.com/oliverbestmann/lockstep/command"
	"github.com/oliverbestmann/lockstep/spoke"
)

const attackRange = 24

// ticks a unit has to wait between two attacks
const attackCooldown = 8

type Position struct {
	X, Y int32
}

type Target struct {
	X, Y int32
}

type Unit struct {
	Owner  command.ClientId
	Health int32
}

type Cooldown struct {
	Timer lockstep.Timer
}

type Name struct {
	Value string
}

type SpawnUnit struct {
	X, Y int32
}

type MoveTo struct {
	X, Y int32
}

type Attack struct {
	Target spoke.EntityId
}

func newSimulation(config lockstep.Config) *lockstep.Simulation {
	sim := lockstep.NewSimulation(config, nil)

	lockstep.Track[Position](sim)
	lockstep.Track[Target](sim)
	lockstep.Track[Unit](sim)
	lockstep.Track[Name](sim)
	lockstep.Track[Cooldown](sim)

	lockstep.Handle(sim, handleSpawnUnit)
	lockstep.Handle(sim, handleMoveTo)
	lockstep.Handle(sim, handleAttack)

	sim.AddSystem(moveSystem)
	sim.AddSystem(cooldownSystem)
	sim.AddSystem(removeDeadUnitsSystem)

	return sim
}

func handleSpawnUnit(ctx *lockstep.Context, cmd command.Command[SpawnUnit]) {
	entityId := ctx.Spawn()

	lockstep.Write(ctx, entityId, Position{X: cmd.Data.X, Y: cmd.Data.Y})
	lockstep.Write(ctx, entityId, Unit{Owner: cmd.ClientId, Health: 100})
	lockstep.Write(ctx, entityId, Name{Value: fmt.Sprintf("unit %s of client %s", entityId, cmd.ClientId)})
}

func handleMoveTo(ctx *lockstep.Context, cmd command.Command[MoveTo]) {
	if !ownedBy(ctx, cmd.EntityId, cmd.ClientId) {
		return
	}

	lockstep.Write(ctx, cmd.EntityId, Target{X: cmd.Data.X, Y: cmd.Data.Y})
}

func handleAttack(ctx *lockstep.Context, cmd command.Command[Attack]) {
	if !ownedBy(ctx, cmd.EntityId, cmd.ClientId) {
		return
	}

	if _, coolingDown := lockstep.Read[Cooldown](ctx, cmd.EntityId); coolingDown {
		return
	}

	target, ok := lockstep.Read[Unit](ctx, cmd.Data.Target)
	if !ok || target.Owner == cmd.ClientId {
		return
	}

	from, _ := lockstep.Read[Position](ctx, cmd.EntityId)
	to, _ := lockstep.Read[Position](ctx, cmd.Data.Target)
	if abs(from.X-to.X)+abs(from.Y-to.Y) > attackRange {
		return
	}

	target.Health -= ctx.RandomRange(5, 15)
	lockstep.Write(ctx, cmd.Data.Target, target)

	lockstep.Write(ctx, cmd.EntityId, Cooldown{Timer: lockstep.NewTimer(attackCooldown, lockstep.TimerModeOnce)})
}

func moveSystem(ctx *lockstep.Context) {
	for entityId, target := range lockstep.Each[Target](ctx) {
		pos, ok := lockstep.Read[Position](ctx, entityId)
		if !ok {
			continue
		}

		pos.X += clamp(target.X-pos.X, -2, 2)
		pos.Y += clamp(target.Y-pos.Y, -2, 2)
		lockstep.Write(ctx, entityId, pos)

		if pos.X == target.X && pos.Y == target.Y {
			lockstep.Delete[Target](ctx, entityId)
		}
	}
}

func cooldownSystem(ctx *lockstep.Context) {
	for entityId, cooldown := range lockstep.Each[Cooldown](ctx) {
		if cooldown.Timer.Tick(1).Finished() {
			lockstep.Delete[Cooldown](ctx, entityId)
			continue
		}

		lockstep.Write(ctx, entityId, cooldown)
	}
}

func removeDeadUnitsSystem(ctx *lockstep.Context) {
	for entityId, unit := range lockstep.Each[Unit](ctx) {
		if unit.Health > 0 {
			continue
		}

		lockstep.Delete[Position](ctx, entityId)
		lockstep.Delete[Target](ctx, entityId)
		lockstep.Delete[Unit](ctx, entityId)
		lockstep.Delete[Name](ctx, entityId)
		lockstep.Delete[Cooldown](ctx, entityId)
	}
}

func ownedBy(ctx *lockstep.Context, entityId spoke.EntityId, clientId command.ClientId) bool {
	unit, ok := lockstep.Read[Unit](ctx, entityId)
	return ok && unit.Owner == clientId
}

func abs(value int32) int32 {
	if value < 0 {
		return -value
	}

	return value
}

func clamp(value, lo, hi int32) int32 {
	return min(max(value, lo), hi)
}
