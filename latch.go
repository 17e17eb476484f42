package syncsim

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/valyala/fastrand"
)

// Latch is the cancellation signal shared by every actor of a simulation
// (One-Way Door).
// Once Open() is called, all current and future Wait() calls return
// immediately and Done() is closed.
//
// It is zero-value usable.
type Latch struct {
	_    noCopy
	once sync.Once
	open atomic.Bool
	ch   atomic.Pointer[chan struct{}]
}

// Open opens the door.
// It wakes up all currently blocked waiters, including actors parked on a
// Cond or sleeping through a simulated delay.
// Open() is idempotent (can be called multiple times).
func (l *Latch) Open() {
	l.once.Do(func() {
		l.open.Store(true)
		close(l.channel())
	})
}

// IsOpen reports whether Open has been called.
func (l *Latch) IsOpen() bool {
	return l.open.Load()
}

// Done returns a channel that is closed once the latch is opened.
func (l *Latch) Done() <-chan struct{} {
	return l.channel()
}

// Wait blocks until Open is called.
// If Open has already been called, it returns immediately.
func (l *Latch) Wait() {
	<-l.channel()
}

// OpenOnDone opens the latch when ctx is done. The returned function
// stops the watcher without opening the latch; once it has returned, a
// later cancellation of ctx no longer affects the latch.
func (l *Latch) OpenOnDone(ctx context.Context) (release func()) {
	quit := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			l.Open()
		case <-quit:
		case <-l.Done():
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			<-exited
		})
	}
}

func (l *Latch) channel() chan struct{} {
	if p := l.ch.Load(); p != nil {
		return *p
	}
	ch := make(chan struct{})
	if l.ch.CompareAndSwap(nil, &ch) {
		return ch
	}
	return *l.ch.Load()
}

// Sleep pauses for d on clk, or until stop opens. It returns ErrStopped if
// the latch opened first.
func Sleep(stop *Latch, clk clock.Clock, d time.Duration) error {
	if stop.IsOpen() {
		return ErrStopped
	}
	if d <= 0 {
		return nil
	}
	t := clk.Timer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-stop.Done():
		return ErrStopped
	}
}

// jitter stretches d by a random amount in [0, d*frac). The draw is made
// in nanoseconds, or in micro- or milliseconds when the span does not fit
// in 32 bits, so long delays keep their full range at a coarser grain.
func jitter(d time.Duration, frac float64) time.Duration {
	if frac <= 0 || d <= 0 {
		return d
	}
	span := float64(d) * frac
	unit := time.Nanosecond
	for span/float64(unit) > math.MaxUint32 && unit < time.Millisecond {
		unit *= 1000
	}
	n := uint32(min(span/float64(unit), math.MaxUint32))
	if n == 0 {
		return d
	}
	return d + time.Duration(fastrand.Uint32n(n))*unit
}

// noCopy may be added to structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
//
// Note that it must not be embedded, due to the Lock and Unlock methods.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
