package command

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/oliverbestmann/lockstep/lookup"
	"github.com/oliverbestmann/lockstep/spoke"
)

type bucket interface {
	Len() int
	Clear()
	RemoveClient(clientId ClientId) bool
}

// clientCommands holds the commands of one type sorted by client id.
type clientCommands[D any] struct {
	commands []Command[D]
}

func (b *clientCommands[D]) Len() int {
	return len(b.commands)
}

func (b *clientCommands[D]) Clear() {
	clear(b.commands)
	b.commands = b.commands[:0]
}

func (b *clientCommands[D]) RemoveClient(clientId ClientId) bool {
	idx, found := b.search(clientId)
	if !found {
		return false
	}

	b.commands = slices.Delete(b.commands, idx, idx+1)
	return true
}

func (b *clientCommands[D]) search(clientId ClientId) (int, bool) {
	return slices.BinarySearchFunc(b.commands, clientId, func(command Command[D], clientId ClientId) int {
		return cmp.Compare(command.ClientId, clientId)
	})
}

// Collection holds the pending commands of every registered command type.
// Command types are keyed by the TypeKey of their data type.
type Collection struct {
	registry *spoke.Registry
	buckets  lookup.Lookup[bucket]
}

func NewCollection(registry *spoke.Registry) *Collection {
	return &Collection{registry: registry}
}

// Add queues a command. It panics if the client already has a pending
// command of the same type, or if D is not registered.
func Add[D any](c *Collection, command Command[D]) {
	b := bucketOf[D](c, true)

	idx, found := b.search(command.ClientId)
	if found {
		panic(fmt.Sprintf(
			"attempt to add command of type %s for client %d at tick %d, client has a pending command for tick %d",
			reflect.TypeFor[D](), command.ClientId, command.Tick, b.commands[idx].Tick,
		))
	}

	b.commands = slices.Insert(b.commands, idx, command)
}

// Remove drops the pending command of type D of the given client.
// It reports whether there was a pending command.
func Remove[D any](c *Collection, clientId ClientId) bool {
	b := bucketOf[D](c, false)
	if b == nil {
		return false
	}

	return b.RemoveClient(clientId)
}

// Get returns the pending command of type D of the given client.
func Get[D any](c *Collection, clientId ClientId) (Command[D], bool) {
	b := bucketOf[D](c, false)
	if b == nil {
		return Command[D]{}, false
	}

	idx, found := b.search(clientId)
	if !found {
		return Command[D]{}, false
	}

	return b.commands[idx], true
}

// Ordered returns all pending commands of type D in ascending client id order.
// The returned slice is a view into the collection. It must not be modified
// and is only valid until the next change to the commands of type D.
func Ordered[D any](c *Collection) []Command[D] {
	b := bucketOf[D](c, false)
	if b == nil {
		return nil
	}

	return b.commands
}

// Len returns the number of pending commands of type D.
func Len[D any](c *Collection) int {
	b := bucketOf[D](c, false)
	if b == nil {
		return 0
	}

	return b.Len()
}

// ClearType drops all pending commands of type D.
func ClearType[D any](c *Collection) {
	if b := bucketOf[D](c, false); b != nil {
		b.Clear()
	}
}

// Clear drops all pending commands. Allocated buffers are kept.
func (c *Collection) Clear() {
	for _, b := range c.buckets.All() {
		b.Clear()
	}
}

// Len returns the number of pending commands over all types.
func (c *Collection) Len() int {
	var n int
	for _, b := range c.buckets.All() {
		n += b.Len()
	}

	return n
}

// RemoveClient drops all pending commands of a client, e.g. after it disconnected.
// It returns the number of commands removed.
func (c *Collection) RemoveClient(clientId ClientId) int {
	var n int
	for _, b := range c.buckets.All() {
		if b.RemoveClient(clientId) {
			n += 1
		}
	}

	return n
}

func bucketOf[D any](c *Collection, create bool) *clientCommands[D] {
	var key spoke.TypeKey

	if create {
		key = spoke.KeyOf[D](c.registry)
	} else {
		var ok bool
		if key, ok = spoke.TryKeyOf[D](c.registry); !ok {
			return nil
		}
	}

	erased, ok := c.buckets.TryGet(int(key))
	if !ok {
		if !create {
			return nil
		}

		b := &clientCommands[D]{}
		c.buckets.Set(int(key), b)
		return b
	}

	b, ok := erased.(*clientCommands[D])
	if !ok {
		panic(fmt.Sprintf("commands of type %T accessed as %s", erased, reflect.TypeFor[D]()))
	}

	return b
}
