package syncsim

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// DefaultGrace is how long RunFor waits for actors after cancellation.
const DefaultGrace = 500 * time.Millisecond

type runConfig struct {
	clock   clock.Clock
	grace   time.Duration
	notices EventSink
}

// RunOption configures RunFor.
type RunOption func(*runConfig)

// WithRunClock sets the clock for the run timer and the grace period.
func WithRunClock(clk clock.Clock) RunOption {
	return func(c *runConfig) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithGrace sets how long actors get to unwind after cancellation.
func WithGrace(d time.Duration) RunOption {
	return func(c *runConfig) {
		c.grace = d
	}
}

// WithNotices sets where the driver reports "time is up" and "simulation
// is over".
func WithNotices(sink EventSink) RunOption {
	return func(c *runConfig) {
		if sink != nil {
			c.notices = sink
		}
	}
}

// RunFor starts e, opens stop once d has elapsed or ctx is done, and then
// waits up to the grace period for every actor to return.
//
// stop must be the latch e was built with. ErrUnwindTimeout is returned if
// the actors are still running when the grace period ends.
func RunFor(ctx context.Context, e Engine, stop *Latch, d time.Duration, opts ...RunOption) error {
	rc := &runConfig{
		clock:   clock.New(),
		grace:   DefaultGrace,
		notices: Discard,
	}
	for _, o := range opts {
		o(rc)
	}
	notify := func(kind EventKind) {
		rc.notices.Append(Event{
			Actor: Actor{Role: RoleDriver},
			Kind:  kind,
			Name:  e.Name(),
			At:    rc.clock.Now(),
		})
	}

	log.Info("simulation started", zap.String("name", e.Name()), zap.Duration("duration", d))
	release := stop.OpenOnDone(ctx)
	defer release()
	e.Start()

	timer := rc.clock.Timer(d)
	select {
	case <-timer.C:
	case <-stop.Done():
		log.Info("simulation canceled early", zap.String("name", e.Name()))
	}
	timer.Stop()
	stop.Open()
	notify(KindTimeUp)

	done := make(chan error, 1)
	go func() { done <- e.Wait() }()
	grace := rc.clock.Timer(rc.grace)
	defer grace.Stop()
	select {
	case err := <-done:
		if err != nil {
			return errors.Annotatef(err, "simulation %s", e.Name())
		}
	case <-grace.C:
		log.Warn("actors did not unwind in time",
			zap.String("name", e.Name()), zap.Duration("grace", rc.grace))
		return errors.Trace(ErrUnwindTimeout)
	}
	notify(KindSimulationOver)
	log.Info("simulation finished", zap.String("name", e.Name()))
	return nil
}
