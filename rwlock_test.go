package syncsim

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRWLock_Basic(t *testing.T) {
	var a int
	var rw RWLock
	rw.Lock()
	require.True(t, rw.IsWriteLocked())
	require.Zero(t, rw.Readers())
	a = 1
	rw.Unlock()
	require.False(t, rw.IsWriteLocked())

	rw.RLock()
	rw.RLock()
	_ = a
	require.Equal(t, 2, rw.Readers())
	require.False(t, rw.TryLock())
	require.Equal(t, 1, rw.RUnlock())
	require.Equal(t, 0, rw.RUnlock())
	require.True(t, rw.TryLock())
	require.False(t, rw.TryRLock())
	rw.Unlock()
}

func TestRWLock_Misuse(t *testing.T) {
	var rw RWLock
	require.Panics(t, func() { rw.Unlock() })
	var rw2 RWLock
	require.Panics(t, func() { rw2.RUnlock() })
}

func TestRWLock_ReadersAndWriters(t *testing.T) {
	var rw RWLock
	var readers int32
	var writers int32

	const loops = 1000
	readerN := runtime.GOMAXPROCS(0)
	writerN := 2

	var wg sync.WaitGroup
	wg.Add(readerN + writerN)

	for range readerN {
		go func() {
			defer wg.Done()
			for range loops {
				rw.RLock()
				n := atomic.AddInt32(&readers, 1)
				if atomic.LoadInt32(&writers) != 0 {
					t.Errorf("reader observed active writer")
					rw.RUnlock()
					return
				}
				if n <= 0 {
					t.Errorf("invalid reader count")
					rw.RUnlock()
					return
				}
				atomic.AddInt32(&readers, -1)
				rw.RUnlock()
			}
		}()
	}

	for range writerN {
		go func() {
			defer wg.Done()
			for range loops {
				rw.Lock()
				if atomic.AddInt32(&writers, 1) != 1 {
					t.Errorf("multiple writers active")
					rw.Unlock()
					return
				}
				if atomic.LoadInt32(&readers) != 0 {
					t.Errorf("writer observed active readers")
					rw.Unlock()
					return
				}
				atomic.AddInt32(&writers, -1)
				rw.Unlock()
			}
		}()
	}

	wg.Wait()
	require.False(t, rw.IsWriteLocked())
	require.Zero(t, rw.Readers())
}

func TestRWLock_LockUntilStopped(t *testing.T) {
	var rw RWLock
	var stop Latch
	rw.RLock()

	time.AfterFunc(20*time.Millisecond, stop.Open)
	err := rw.LockUntil(&stop)
	require.True(t, IsStopped(err))
	require.False(t, rw.IsWriteLocked())
	require.Equal(t, 1, rw.Readers())
	rw.RUnlock()
}

func TestRWLock_RLockUntilStopped(t *testing.T) {
	var rw RWLock
	var stop Latch
	rw.Lock()

	time.AfterFunc(20*time.Millisecond, stop.Open)
	err := rw.RLockUntil(&stop)
	require.True(t, IsStopped(err))
	require.Zero(t, rw.Readers())
	rw.Unlock()
}

func TestRWLock_LockWaitsForReaders(t *testing.T) {
	var rw RWLock
	rw.RLock()
	acquired := make(chan struct{})
	go func() {
		rw.Lock()
		close(acquired)
	}()
	select {
	case <-acquired:
		t.Fatal("writer got in while a reader held the lock")
	case <-time.After(20 * time.Millisecond):
	}
	rw.RUnlock()
	<-acquired
	require.True(t, rw.IsWriteLocked())
	rw.Unlock()
}

func TestRWLock_AsLocker(t *testing.T) {
	var rw RWLock
	c := NewCond(&rw)
	ready := false
	woke := make(chan struct{})
	go func() {
		defer close(woke)
		rw.Lock()
		for !ready {
			c.Wait()
		}
		rw.Unlock()
	}()

	time.Sleep(5 * time.Millisecond)
	rw.Lock()
	ready = true
	c.Broadcast()
	rw.Unlock()

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("waiter on RWLock-backed Cond was not woken")
	}
	require.False(t, rw.IsWriteLocked())
}
