package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/oliverbestmann/lockstep"
	"github.com/oliverbestmann/lockstep/command"
	"github.com/oliverbestmann/lockstep/spoke"
)

// clients send their commands for a tick this many ticks ahead
const inputDelay = 2

type Result struct {
	Peers []PeerResult
}

type PeerResult struct {
	Tick     spoke.Tick
	Checksum uint64
	Stats    lockstep.Stats
}

// InSync reports whether all peers reached the same state at the same tick.
func (r Result) InSync() bool {
	for _, peer := range r.Peers[1:] {
		if peer.Tick != r.Peers[0].Tick || peer.Checksum != r.Peers[0].Checksum {
			return false
		}
	}

	return true
}

// message is a command on its way to a peer.
type message struct {
	post func(inbox *lockstep.Inbox)
}

func messageOf[D any](cmd command.Command[D]) message {
	return message{
		post: func(inbox *lockstep.Inbox) {
			lockstep.Post(inbox, cmd)
		},
	}
}

type peer struct {
	sim   *lockstep.Simulation
	inbox lockstep.Inbox

	rng *rand.Rand

	// messages by the tick they arrive at
	pending map[spoke.Tick][]message

	batches   chan []message
	delivered chan struct{}
}

func newPeer(config lockstep.Config, rng *rand.Rand) *peer {
	p := &peer{
		sim:       newSimulation(config),
		rng:       rng,
		pending:   map[spoke.Tick][]message{},
		batches:   make(chan []message),
		delivered: make(chan struct{}),
	}

	go p.receive()

	return p
}

// receive plays the network goroutine, posting messages into the inbox.
func (p *peer) receive() {
	for batch := range p.batches {
		for _, msg := range batch {
			msg.post(&p.inbox)
		}

		p.delivered <- struct{}{}
	}
}

func (p *peer) send(now spoke.Tick, maxDelay int, msg message) {
	arrival := now + spoke.Tick(p.rng.IntN(maxDelay+1))
	p.pending[arrival] = append(p.pending[arrival], msg)
}

// deliver hands the messages arriving at the given tick to the network goroutine
// in random order and waits for them to be posted.
func (p *peer) deliver(now spoke.Tick) {
	batch := p.pending[now]
	delete(p.pending, now)

	p.deliverBatch(batch)
}

func (p *peer) deliverAll() {
	var batch []message
	for tick, messages := range p.pending {
		batch = append(batch, messages...)
		delete(p.pending, tick)
	}

	p.deliverBatch(batch)
}

func (p *peer) deliverBatch(batch []message) {
	p.rng.Shuffle(len(batch), func(i, j int) {
		batch[i], batch[j] = batch[j], batch[i]
	})

	p.batches <- batch
	<-p.delivered
}

func (p *peer) step() error {
	if err := p.inbox.Drain(p.sim); err != nil {
		return fmt.Errorf("peer at tick %d: %w", p.sim.Tick(), err)
	}

	p.sim.Step()
	return nil
}

func (p *peer) close() {
	close(p.batches)
}

func (p *peer) result() PeerResult {
	return PeerResult{
		Tick:     p.sim.Tick(),
		Checksum: p.sim.Checksum(),
		Stats:    p.sim.Stats(),
	}
}

// run lets the clients play against each other. Every command is sent to two
// peers, each receiving the commands with different delays and in different order.
func run(cfg Config) (Result, error) {
	rng := rand.New(rand.NewPCG(cfg.Seed, 0x5eed))

	peers := []*peer{
		newPeer(cfg.Lockstep, rand.New(rand.NewPCG(cfg.Seed, 1))),
		newPeer(cfg.Lockstep, rand.New(rand.NewPCG(cfg.Seed, 2))),
	}

	defer func() {
		for _, p := range peers {
			p.close()
		}
	}()

	broadcast := func(now spoke.Tick, msg message) {
		for _, p := range peers {
			p.send(now, cfg.MaxDelay, msg)
		}
	}

	// every client starts with one unit, the units get the client ids as entity ids
	for client := range cfg.Clients {
		clientId := command.ClientId(client + 1)
		spawn := SpawnUnit{X: int32(client * 16), Y: 0}
		broadcast(0, messageOf(command.New(clientId, 0, spawn)))
	}

	clock := lockstep.NewClock(cfg.Lockstep.TicksPerSecond)

	var now spoke.Tick
	for int(now) < cfg.Ticks {
		// frames of a jittering renderer drive the simulation
		frame := time.Duration(8+rng.IntN(25)) * time.Millisecond

		for range clock.Advance(frame) {
			if int(now) >= cfg.Ticks {
				break
			}

			for client := range cfg.Clients {
				if msg, ok := clientInput(rng, cfg.Clients, command.ClientId(client+1), now+inputDelay); ok {
					broadcast(now, msg)
				}
			}

			for _, p := range peers {
				p.deliver(now)

				if err := p.step(); err != nil {
					return Result{}, err
				}
			}

			now += 1
		}
	}

	// deliver everything still in flight and apply it with one final step
	for _, p := range peers {
		p.deliverAll()

		if err := p.step(); err != nil {
			return Result{}, err
		}
	}

	var result Result
	for _, p := range peers {
		result.Peers = append(result.Peers, p.result())
	}

	return result, nil
}

func clientInput(rng *rand.Rand, clients int, clientId command.ClientId, tick spoke.Tick) (message, bool) {
	unit := spoke.EntityId(clientId)

	switch rng.IntN(6) {
	case 0:
		moveTo := MoveTo{X: rng.Int32N(128) - 64, Y: rng.Int32N(128) - 64}
		return messageOf(command.New(clientId, tick, moveTo).WithEntityId(unit)), true

	case 1:
		attack := Attack{Target: spoke.EntityId(1 + rng.IntN(clients))}
		return messageOf(command.New(clientId, tick, attack).WithEntityId(unit)), true

	default:
		return message{}, false
	}
}
