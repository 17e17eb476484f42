package syncsim

import "github.com/pingcap/errors"

var (
	// ErrStopped is returned from a suspension point when the cancellation
	// latch opened. It is the expected way for an actor to finish.
	ErrStopped = errors.New("syncsim: stopped")

	// ErrUnwindTimeout is returned by RunFor when actors did not finish
	// within the grace period after cancellation.
	ErrUnwindTimeout = errors.New("syncsim: actors did not unwind in time")
)

// IsStopped reports whether err is the cooperative cancellation signal.
func IsStopped(err error) bool {
	return err != nil && errors.Cause(err) == ErrStopped
}
