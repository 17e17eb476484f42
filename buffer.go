package syncsim

import (
	"sync"
	"unsafe"

	"github.com/llxisdsh/syncsim/internal/opt"
)

// Slot is one position of a Buffer: an independent critical section made
// of a mutex, a condition variable bound to it and the occupied flag.
//
// occupied is only read or written while mu is held.
type Slot struct {
	slotState
	_ [(opt.CacheLineSize - unsafe.Sizeof(slotState{})%opt.CacheLineSize) % opt.CacheLineSize]byte
}

type slotState struct {
	mu       sync.Mutex
	cond     *Cond
	occupied bool
}

// Occupied reports whether the slot holds a produced, not yet consumed item.
func (s *Slot) Occupied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.occupied
}

// Buffer is a fixed-size sequence of Slots shared by all producers and
// consumers. There is no buffer-wide lock: every slot progresses on its own.
type Buffer struct {
	slots []Slot
}

// NewBuffer creates a Buffer of size empty slots. size must be positive.
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		panic("syncsim: buffer size must be positive")
	}
	b := &Buffer{slots: make([]Slot, size)}
	for i := range b.slots {
		s := &b.slots[i]
		s.cond = NewCond(&s.mu)
	}
	return b
}

// Len returns the number of slots.
func (b *Buffer) Len() int {
	return len(b.slots)
}

// Slot returns the i-th slot.
func (b *Buffer) Slot(i int) *Slot {
	return &b.slots[i]
}

// Occupied reports whether slot i is occupied.
func (b *Buffer) Occupied(i int) bool {
	return b.slots[i].Occupied()
}

// Produce fills slot i, waiting while it is occupied. report is called with
// the slot lock held, so the events of one slot are reported in the order
// its state changed.
//
// If stop opens while waiting, Produce returns ErrStopped and leaves the
// slot untouched.
func (b *Buffer) Produce(stop *Latch, i int, report func(EventKind)) error {
	return b.transition(stop, i, true, KindProducerWaiting, KindProduced, report)
}

// Consume empties slot i, waiting while it is empty. See Produce.
func (b *Buffer) Consume(stop *Latch, i int, report func(EventKind)) error {
	return b.transition(stop, i, false, KindConsumerWaiting, KindConsumed, report)
}

// transition waits until slot i's flag differs from to, then sets it and
// wakes every waiter: producers and consumers share one condition
// variable per slot and each must re-check its own predicate.
func (b *Buffer) transition(stop *Latch, i int, to bool, waiting, done EventKind, report func(EventKind)) error {
	s := &b.slots[i]
	s.mu.Lock()
	for s.occupied == to {
		report(waiting)
		if err := s.cond.WaitUntil(stop); err != nil {
			// Lock already released.
			return err
		}
	}
	s.occupied = to
	report(done)
	s.cond.Broadcast()
	s.mu.Unlock()
	return nil
}
