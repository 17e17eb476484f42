package syncsim

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Timings holds the simulated delays. They model work, not correctness:
// any positive values keep the engines correct.
type Timings struct {
	// Process is the pause after a produce or consume, outside the slot lock.
	Process time.Duration `toml:"process"`
	// Read is how long a reader holds the resource.
	Read time.Duration `toml:"read"`
	// ReadPause is the pause after a reader releases the resource.
	ReadPause time.Duration `toml:"read-pause"`
	// Backoff is the pause before a reader or writer retries.
	Backoff time.Duration `toml:"backoff"`
	// Write is how long a writer holds the resource.
	Write time.Duration `toml:"write"`
	// WriteCooldown is the pause after a completed write.
	WriteCooldown time.Duration `toml:"write-cooldown"`
	// Stagger delays every reader-writer actor but the first writer at start.
	Stagger time.Duration `toml:"stagger"`
	// Jitter stretches every delay by a random fraction in [0, Jitter).
	Jitter float64 `toml:"jitter"`
}

// DefaultTimings returns the classic demonstration pacing.
func DefaultTimings() Timings {
	return Timings{
		Process:       700 * time.Millisecond,
		Read:          200 * time.Millisecond,
		ReadPause:     200 * time.Millisecond,
		Backoff:       200 * time.Millisecond,
		Write:         200 * time.Millisecond,
		WriteCooldown: 1800 * time.Millisecond,
		Stagger:       50 * time.Millisecond,
	}
}

type config struct {
	timings Timings
	clock   clock.Clock
}

func newConfig(opts []Option) *config {
	c := &config{
		timings: DefaultTimings(),
		clock:   clock.New(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// sleep runs one simulated delay.
func (c *config) sleep(stop *Latch, d time.Duration) error {
	return Sleep(stop, c.clock, jitter(d, c.timings.Jitter))
}

// Option configures an engine.
type Option func(*config)

// WithTimings replaces the simulated delays.
func WithTimings(t Timings) Option {
	return func(c *config) {
		c.timings = t
	}
}

// WithClock sets the clock used for delays and event timestamps.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clock = clk
		}
	}
}
