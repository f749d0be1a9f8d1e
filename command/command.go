// Package command collects the pending inputs of all clients.
//
// A Collection keeps at most one pending command per client and command type and
// hands them out ordered by client id. As every peer orders by client id instead of
// arrival time, all peers apply the same commands in the same order.
package command

import (
	"log/slog"
	"strconv"

	"github.com/oliverbestmann/lockstep/spoke"
)

// ClientId identifies a participant of a session.
type ClientId int32

func (c ClientId) String() string {
	return strconv.Itoa(int(c))
}

func (c ClientId) LogValue() slog.Value {
	return slog.StringValue(c.String())
}

// Command is an input of a client for a specific tick. The type of Data decides
// which bucket of a Collection receives the command.
type Command[D any] struct {
	// EntityId optionally names the receiver of the command.
	EntityId spoke.EntityId
	ClientId ClientId
	Tick     spoke.Tick
	Data     D
}

func New[D any](clientId ClientId, tick spoke.Tick, data D) Command[D] {
	return Command[D]{
		ClientId: clientId,
		Tick:     tick,
		Data:     data,
	}
}

func (c Command[D]) WithEntityId(entityId spoke.EntityId) Command[D] {
	c.EntityId = entityId
	return c
}

func (c Command[D]) WithClientId(clientId ClientId) Command[D] {
	c.ClientId = clientId
	return c
}

func (c Command[D]) WithTick(tick spoke.Tick) Command[D] {
	c.Tick = tick
	return c
}
