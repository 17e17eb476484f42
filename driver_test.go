package syncsim

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

// stubEngine has a single actor that returns err once stop opens and hold,
// if set, is closed.
type stubEngine struct {
	stop *Latch
	hold chan struct{}
	err  error
	done chan struct{}
}

func newStubEngine(stop *Latch) *stubEngine {
	return &stubEngine{stop: stop, done: make(chan struct{})}
}

func (e *stubEngine) Name() string { return "stub" }

func (e *stubEngine) Start() {
	go func() {
		defer close(e.done)
		<-e.stop.Done()
		if e.hold != nil {
			<-e.hold
		}
	}()
}

func (e *stubEngine) Wait() error {
	<-e.done
	return e.err
}

func TestRunFor(t *testing.T) {
	var stop Latch
	e := newStubEngine(&stop)
	mem := &MemorySink{}
	start := time.Now()
	require.NoError(t, RunFor(context.Background(), e, &stop, 20*time.Millisecond, WithNotices(mem)))
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	require.True(t, stop.IsOpen())
	require.Equal(t, []string{
		"Time is up! Stopping all processes.",
		"Simulation of stub is over.",
	}, mem.Lines())
}

func TestRunForMockClock(t *testing.T) {
	mock := clock.NewMock()
	var stop Latch
	e := newStubEngine(&stop)
	mem := &MemorySink{}
	done := make(chan error, 1)
	go func() {
		done <- RunFor(context.Background(), e, &stop, time.Second, WithRunClock(mock), WithNotices(mem))
	}()

	// Steps stay well below the grace period, so at most one extra step
	// after the run timer fires cannot expire it.
	for !stop.IsOpen() {
		mock.Add(100 * time.Millisecond)
		runtime.Gosched()
	}
	require.NoError(t, <-done)
	evs := mem.Events()
	require.Len(t, evs, 2)
	require.False(t, evs[0].At.Before(time.Unix(0, 0).Add(time.Second)))
}

func TestRunForContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stop Latch
	e := newStubEngine(&stop)
	mem := &MemorySink{}
	start := time.Now()
	require.NoError(t, RunFor(ctx, e, &stop, time.Hour, WithNotices(mem)))
	require.Less(t, time.Since(start), margin(time.Second))
	require.Equal(t, 2, mem.Len())
}

func TestRunForStoppedExternally(t *testing.T) {
	var stop Latch
	e := newStubEngine(&stop)
	go func() {
		time.Sleep(10 * time.Millisecond)
		stop.Open()
	}()
	require.NoError(t, RunFor(context.Background(), e, &stop, time.Hour))
}

func TestRunForUnwindTimeout(t *testing.T) {
	var stop Latch
	e := newStubEngine(&stop)
	e.hold = make(chan struct{})
	mem := &MemorySink{}
	err := RunFor(context.Background(), e, &stop, time.Millisecond, WithGrace(20*time.Millisecond), WithNotices(mem))
	require.Error(t, err)
	require.Equal(t, ErrUnwindTimeout, errors.Cause(err))
	require.Equal(t, 1, countKind(mem.Events(), KindTimeUp))
	require.Zero(t, countKind(mem.Events(), KindSimulationOver))

	close(e.hold)
	require.NoError(t, e.Wait())
}

func TestRunForEngineError(t *testing.T) {
	var stop Latch
	e := newStubEngine(&stop)
	e.err = errors.New("actor crashed")
	err := RunFor(context.Background(), e, &stop, time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "simulation stub")
	require.Contains(t, err.Error(), "actor crashed")
}
