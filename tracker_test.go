package syncsim

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	var tr Tracker
	t0 := time.Unix(100, 0)
	p1 := Actor{RoleProducer, 1}
	c1 := Actor{RoleConsumer, 1}
	w1 := Actor{RoleWriter, 1}

	tr.Append(Event{Actor: p1, Kind: KindProduced, Slot: 0, At: t0})
	tr.Append(Event{Actor: p1, Kind: KindProducerWaiting, Slot: 1, At: t0.Add(time.Second)})
	tr.Append(Event{Actor: p1, Kind: KindProduced, Slot: 1, At: t0.Add(2 * time.Second)})
	tr.Append(Event{Actor: c1, Kind: KindConsumed, Slot: 0, At: t0.Add(time.Second)})
	tr.Append(Event{Actor: w1, Kind: KindWriting, At: t0})
	tr.Append(Event{Actor: w1, Kind: KindWriterFinished, At: t0})
	tr.Append(Event{Actor: Actor{Role: RoleDriver}, Kind: KindTimeUp, At: t0})

	p, ok := tr.Get(p1)
	require.True(t, ok)
	require.Equal(t, 3, p.Events)
	require.Equal(t, 2, p.Completed)
	require.Equal(t, t0, p.First)
	require.Equal(t, t0.Add(2*time.Second), p.Last)
	require.Equal(t, map[int]int{0: 1, 1: 1}, p.Slots)

	_, ok = tr.Get(Actor{RoleReader, 1})
	require.False(t, ok)
	_, ok = tr.Get(Actor{Role: RoleDriver})
	require.False(t, ok)

	snap := tr.Snapshot()
	require.Len(t, snap, 3)
	require.Equal(t, []Actor{p1, c1, w1}, []Actor{snap[0].Actor, snap[1].Actor, snap[2].Actor})
	require.Equal(t, 1, snap[2].Completed)
	require.Nil(t, snap[2].Slots)

	// Snapshots are copies.
	snap[0].Slots[0] = 99
	p, _ = tr.Get(p1)
	require.Equal(t, 1, p.Slots[0])
}

func TestTrackerConcurrent(t *testing.T) {
	const actors, events = 8, 1000
	var (
		tr Tracker
		wg sync.WaitGroup
	)
	for id := 1; id <= actors; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range events {
				tr.Append(Event{Actor: Actor{RoleConsumer, id}, Kind: KindConsumed, Slot: i % 4})
			}
		}()
	}
	wg.Wait()

	snap := tr.Snapshot()
	require.Len(t, snap, actors)
	for i, p := range snap {
		require.Equal(t, i+1, p.Actor.ID)
		require.Equal(t, events, p.Completed)
		require.Len(t, p.Slots, 4)
	}
}

func TestTrackerConcurrentReaders(t *testing.T) {
	const actors, rounds = 8, 50
	var (
		tr       Tracker
		wg       sync.WaitGroup
		appended = make(chan struct{})
		done     = make(chan struct{})
	)
	// Snapshot and Get run while actors keep appearing.
	go func() {
		defer close(done)
		for {
			select {
			case <-appended:
				return
			default:
			}
			tr.Snapshot()
			tr.Get(Actor{RoleReader, 1})
		}
	}()
	for id := 1; id <= actors; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rounds {
				tr.Append(Event{Actor: Actor{RoleReader, id*rounds + i}, Kind: KindReading, Readers: 1})
			}
		}()
	}
	wg.Wait()
	close(appended)
	<-done

	require.Len(t, tr.Snapshot(), actors*rounds)
}
