package syncsim

import (
	"sync"

	"github.com/pingcap/errors"
	"golang.org/x/sync/errgroup"
)

// Engine is a runnable simulation.
type Engine interface {
	// Name identifies the simulation in driver notices.
	Name() string
	// Start spawns one goroutine per actor. It must be called once.
	Start()
	// Wait blocks until every actor has returned.
	Wait() error
}

// runner is implemented by every actor.
type runner interface {
	Run(stop *Latch) error
}

// actorBase carries what every actor shares: identity, where to report
// and how to pace itself.
type actorBase struct {
	actor Actor
	sink  EventSink
	cfg   *config
}

func (a *actorBase) emit(ev Event) {
	ev.Actor = a.actor
	ev.At = a.cfg.clock.Now()
	a.sink.Append(ev)
}

func (a *actorBase) emitKind(kind EventKind) {
	a.emit(Event{Kind: kind})
}

// Actor returns the identity of the actor.
func (a *actorBase) Actor() Actor {
	return a.actor
}

// crew runs a fixed set of actors on an errgroup.
type crew struct {
	name   string
	actors []runner
	stop   *Latch

	startOnce sync.Once
	group     errgroup.Group
}

func (c *crew) Name() string { return c.name }

func (c *crew) Start() {
	c.startOnce.Do(func() {
		for _, a := range c.actors {
			c.group.Go(func() error {
				if err := a.Run(c.stop); err != nil && !IsStopped(err) {
					return errors.Trace(err)
				}
				return nil
			})
		}
	})
}

func (c *crew) Wait() error {
	return c.group.Wait()
}

// Run starts the actors and waits for them.
func (c *crew) Run() error {
	c.Start()
	return c.Wait()
}
