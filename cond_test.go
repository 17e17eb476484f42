package syncsim

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCondBroadcast(t *testing.T) {
	var mu sync.Mutex
	c := NewCond(&mu)
	ready := false
	const n = 8

	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			mu.Lock()
			for !ready {
				c.Wait()
			}
			mu.Unlock()
		}()
	}

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	ready = true
	c.Broadcast()
	mu.Unlock()
	wg.Wait()
}

func TestCondWaitUntilWoken(t *testing.T) {
	var mu sync.Mutex
	var stop Latch
	c := NewCond(&mu)

	done := make(chan error, 1)
	mu.Lock()
	go func() {
		mu.Lock()
		c.Broadcast()
		mu.Unlock()
	}()
	done <- c.WaitUntil(&stop)
	// The lock is held again after a normal wakeup.
	require.False(t, mu.TryLock())
	mu.Unlock()
	require.NoError(t, <-done)
}

func TestCondWaitUntilStopped(t *testing.T) {
	var mu sync.Mutex
	var stop Latch
	c := NewCond(&mu)

	time.AfterFunc(20*time.Millisecond, stop.Open)
	mu.Lock()
	err := c.WaitUntil(&stop)
	require.True(t, IsStopped(err))
	// Not re-locked on cancellation.
	require.True(t, mu.TryLock())
	mu.Unlock()
}

func TestCondNoLostWakeup(t *testing.T) {
	// A broadcast racing with the waiter's unlock must still be seen.
	var mu sync.Mutex
	var stop Latch
	c := NewCond(&mu)
	for range 1000 {
		flag := false
		mu.Lock()
		go func() {
			mu.Lock()
			flag = true
			c.Broadcast()
			mu.Unlock()
		}()
		for !flag {
			require.NoError(t, c.WaitUntil(&stop))
		}
		mu.Unlock()
	}
}
