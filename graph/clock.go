package graph

import "time"

// Clock abstracts wall-clock time for the throttle and batch sink policies,
// so tests can drive them with virtual time instead of real sleeps — the
// teacher has no equivalent (its Timer in internal/utils only measures
// elapsed durations, not a stand-in for time.Now/time.NewTimer), but the
// policies' quantified test scenarios (spec §8) need deterministic time
// control, so this is a new, small ambient abstraction built in the
// teacher's spirit of a narrow, single-purpose helper type.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) ClockTimer
}

// ClockTimer is the subset of time.Timer that batch workers need: a fire
// channel and a way to stop it early.
type ClockTimer interface {
	C() <-chan time.Time
	Stop() bool
}

// realClock is the production Clock, backed by the standard library.
type realClock struct{}

// NewRealClock returns the Clock used outside tests.
func NewRealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTimer(d time.Duration) ClockTimer {
	return realClockTimer{time.NewTimer(d)}
}

type realClockTimer struct {
	t *time.Timer
}

func (r realClockTimer) C() <-chan time.Time { return r.t.C }
func (r realClockTimer) Stop() bool          { return r.t.Stop() }
