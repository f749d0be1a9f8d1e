package lockstep

import (
	"errors"
	"sync"

	"github.com/oliverbestmann/lockstep/command"
)

type delivery func(sim *Simulation) error

// Inbox hands commands from network goroutines over to the goroutine driving
// the Simulation. Post may be called concurrently, Drain must only be called
// by the simulation goroutine.
type Inbox struct {
	_ noCopy

	mu   sync.Mutex
	curr []delivery
	prev []delivery
}

// Post queues a command for the next call to Drain.
func Post[D any](inbox *Inbox, cmd command.Command[D]) {
	inbox.mu.Lock()
	defer inbox.mu.Unlock()

	inbox.curr = append(inbox.curr, func(sim *Simulation) error {
		return Submit(sim, cmd)
	})
}

// Len returns the number of commands waiting to be drained.
func (inbox *Inbox) Len() int {
	inbox.mu.Lock()
	defer inbox.mu.Unlock()

	return len(inbox.curr)
}

// Drain submits all queued commands to the simulation in the order they were posted.
// Commands that are rejected do not stop the drain, their errors are joined.
func (inbox *Inbox) Drain(sim *Simulation) error {
	inbox.mu.Lock()
	inbox.curr, inbox.prev = inbox.prev, inbox.curr
	inbox.mu.Unlock()

	var errs []error
	for _, deliver := range inbox.prev {
		if err := deliver(sim); err != nil {
			errs = append(errs, err)
		}
	}

	// reuse the memory of the drained buffer
	clear(inbox.prev)
	inbox.prev = inbox.prev[:0]

	return errors.Join(errs...)
}
