package syncsim

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// RWLock is a spin-based Reader-Writer lock whose state can be observed.
//
// Properties:
//   - N concurrent readers XOR one writer.
//   - Not writer-preferred: a writer only gets in once the lock is
//     completely free. Fairness is left to the callers.
//   - Busy-wait (Spinning) with backoff; cancellable acquisition through
//     LockUntil and RLockUntil.
//   - IsWriteLocked and Readers are advisory: the answer may be stale by
//     the time the caller acts on it.
//
// It is zero-value usable.
type RWLock struct {
	_     noCopy
	state atomic.Uint32
}

var _ sync.Locker = (*RWLock)(nil)

const (
	rwWriteMask = 1
	rwReadShift = 1
	rwReadUnit  = 1 << rwReadShift
)

// TryLock acquires the write lock if it is completely free.
func (rw *RWLock) TryLock() bool {
	return rw.state.CompareAndSwap(0, rwWriteMask)
}

// Lock acquires the write lock.
// It spins until the lock is free. Lock and Unlock make RWLock a
// sync.Locker; actors use LockUntil so that they can be stopped.
func (rw *RWLock) Lock() {
	_ = rw.LockUntil(nil)
}

// LockUntil acquires the write lock, giving up with ErrStopped if stop
// opens first. A nil stop never opens.
func (rw *RWLock) LockUntil(stop *Latch) error {
	var spins int
	for {
		if rw.TryLock() {
			return nil
		}
		if stop != nil && stop.IsOpen() {
			return ErrStopped
		}
		delay(&spins)
	}
}

// Unlock releases the write lock.
func (rw *RWLock) Unlock() {
	if !rw.state.CompareAndSwap(rwWriteMask, 0) {
		panic("syncsim: Unlock of unlocked RWLock")
	}
}

// TryRLock acquires a read lock if no writer holds the lock.
func (rw *RWLock) TryRLock() bool {
	for {
		s := rw.state.Load()
		if s&rwWriteMask != 0 {
			return false
		}
		if rw.state.CompareAndSwap(s, s+rwReadUnit) {
			return true
		}
	}
}

// RLock acquires a read lock, spinning until no writer holds the lock.
func (rw *RWLock) RLock() {
	_ = rw.RLockUntil(nil)
}

// RLockUntil acquires a read lock, giving up with ErrStopped if stop
// opens first. A nil stop never opens.
func (rw *RWLock) RLockUntil(stop *Latch) error {
	var spins int
	for {
		if rw.TryRLock() {
			return nil
		}
		if stop != nil && stop.IsOpen() {
			return ErrStopped
		}
		delay(&spins)
	}
}

// RUnlock releases a read lock and returns the number of readers still
// holding the lock.
func (rw *RWLock) RUnlock() int {
	s := rw.state.Add(^uint32(rwReadUnit - 1))
	if s&rwWriteMask != 0 || int32(s) < 0 {
		panic("syncsim: RUnlock of unlocked RWLock")
	}
	return int(s >> rwReadShift)
}

// IsWriteLocked reports whether a writer currently holds the lock.
func (rw *RWLock) IsWriteLocked() bool {
	return rw.state.Load()&rwWriteMask != 0
}

// Readers reports the number of readers currently holding the lock.
func (rw *RWLock) Readers() int {
	return int(rw.state.Load() >> rwReadShift)
}

const spinBeforeSleep = 16

func delay(spins *int) {
	if *spins < spinBeforeSleep {
		*spins++
		runtime.Gosched()
		return
	}
	// time.Sleep with non-zero duration (≈Millisecond level) works
	// effectively as backoff under high concurrency.
	time.Sleep(500 * time.Microsecond)
}
