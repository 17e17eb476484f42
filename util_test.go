package syncsim

import (
	"testing"
	"time"

	"github.com/llxisdsh/syncsim/internal/opt"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fastTimings scales the demonstration pacing down so scenarios finish in
// well under a second.
func fastTimings() Timings {
	return Timings{
		Process:       time.Millisecond,
		Read:          10 * time.Millisecond,
		ReadPause:     5 * time.Millisecond,
		Backoff:       5 * time.Millisecond,
		Write:         10 * time.Millisecond,
		WriteCooldown: 30 * time.Millisecond,
		Stagger:       2 * time.Millisecond,
	}
}

// margin widens timing bounds under the race detector.
func margin(d time.Duration) time.Duration {
	if opt.Race {
		return 5 * d
	}
	return d
}

func countKind(evs []Event, kind EventKind) int {
	n := 0
	for _, ev := range evs {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
