package syncsim

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// Tracker is an EventSink that keeps per-actor progress: how many events
// an actor reported, when, how many units of work it completed and which
// slots it moved.
//
// It is zero-value usable and safe for concurrent use.
type Tracker struct {
	m progressMap
}

type actorProgress struct {
	mu          sync.Mutex
	events      int
	completed   int
	first, last time.Time
	slots       map[int]int
}

// Progress is a point-in-time copy of one actor's progress.
type Progress struct {
	Actor Actor
	// Events counts every reported event.
	Events int
	// Completed counts finished units of work: produce, consume, read or
	// write.
	Completed int
	// First and Last are the timestamps of the first and latest event.
	First, Last time.Time
	// Slots maps a slot index to the transitions this actor made there.
	Slots map[int]int
}

// Append implements EventSink. Driver notices are ignored.
func (t *Tracker) Append(ev Event) {
	if ev.Actor.Role == RoleDriver {
		return
	}
	p := loadProgress(&t.m, ev.Actor)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events++
	if p.first.IsZero() {
		p.first = ev.At
	}
	p.last = ev.At
	switch ev.Kind {
	case KindProduced, KindConsumed:
		p.completed++
		if p.slots == nil {
			p.slots = make(map[int]int)
		}
		p.slots[ev.Slot]++
	case KindReading, KindWriterFinished:
		p.completed++
	}
}

// Get returns the progress of one actor.
func (t *Tracker) Get(a Actor) (Progress, bool) {
	p, ok := t.m.Load(a)
	if !ok {
		return Progress{Actor: a}, false
	}
	return p.snapshot(a), true
}

// Snapshot returns the progress of every actor seen so far, ordered by
// role and then ID.
func (t *Tracker) Snapshot() []Progress {
	var out []Progress
	t.m.Range(func(a Actor, p *actorProgress) bool {
		out = append(out, p.snapshot(a))
		return true
	})
	slices.SortFunc(out, func(x, y Progress) int {
		if x.Actor.Role != y.Actor.Role {
			return int(x.Actor.Role) - int(y.Actor.Role)
		}
		return x.Actor.ID - y.Actor.ID
	})
	return out
}

func (p *actorProgress) snapshot(a Actor) Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Progress{
		Actor:     a,
		Events:    p.events,
		Completed: p.completed,
		First:     p.first,
		Last:      p.last,
		Slots:     maps.Clone(p.slots),
	}
}
