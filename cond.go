package syncsim

import (
	"sync"
	"sync/atomic"
)

// Cond is like sync.Cond, but a waiter can be released by a Latch.
//
// Every Broadcast swaps in a fresh channel and closes the old one, so a
// waiter that captured the channel before unlocking L cannot miss a wakeup.
type Cond struct {
	L  sync.Locker
	ch atomic.Pointer[chan struct{}]
}

// NewCond creates a new Cond.
func NewCond(l sync.Locker) *Cond {
	c := &Cond{L: l}
	ch := make(chan struct{})
	c.ch.Store(&ch)
	return c
}

// Wait waits on the condition variable without a way out, like
// sync.Cond.Wait. Actors use WaitUntil.
// L must be held; it is held again when Wait returns.
func (c *Cond) Wait() {
	ch := c.getCh()
	c.L.Unlock()
	<-ch
	c.L.Lock()
}

// WaitUntil waits on the condition variable until Broadcast is called or
// stop is opened.
// The lock is NOT re-locked if stop opened; ErrStopped is returned instead.
func (c *Cond) WaitUntil(stop *Latch) error {
	ch := c.getCh()
	c.L.Unlock()
	select {
	case <-ch:
		c.L.Lock()
		return nil
	case <-stop.Done():
		return ErrStopped
	}
}

// Broadcast wakes up all the waiters.
func (c *Cond) Broadcast() {
	ch := make(chan struct{})
	old := c.ch.Swap(&ch)
	close(*old)
}

func (c *Cond) getCh() <-chan struct{} {
	return *c.ch.Load()
}
