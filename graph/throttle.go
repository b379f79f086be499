package graph

import (
	"time"

	"github.com/senoroctopus/octopus/event"
	"github.com/senoroctopus/octopus/internal/utils"
	"github.com/senoroctopus/octopus/stream"
)

// RunThrottled implements spec §4.5's throttle gate around invoke (the
// sink's actual plugin call, or — when batch is also configured — the
// enqueue step). If n.Throttle is set, lastRun is non-nil, and less than
// Throttle has elapsed since it, the run is dropped: upstream is drained
// (never handed to invoke) and invoke never runs. Otherwise invoke runs
// against a transparent wrapper that tracks whether at least one event was
// observed; lastRun only advances when it was — a run that saw zero events
// must not advance it.
func (n *Node) RunThrottled(clock Clock, upstream stream.Stream, invoke func(stream.Stream) error) error {
	if n.Throttle > 0 {
		n.mu.Lock()
		last := n.lastRun
		n.mu.Unlock()
		if last != nil && clock.Now().Sub(*last) < n.Throttle {
			return stream.Drain(upstream)
		}
	}

	atLeastOne := false
	observed := observeLastRun(upstream, &atLeastOne)
	err := invoke(observed)

	if atLeastOne {
		n.mu.Lock()
		n.lastRun = utils.Ptr(clock.Now())
		n.mu.Unlock()
	}
	return err
}

// LastRun returns the last monotonic instant at which this sink observed at
// least one event, or nil if it never has.
func (n *Node) LastRun() *time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.lastRun == nil {
		return nil
	}
	return utils.Ptr(*n.lastRun)
}

// observeLastRun wraps upstream transparently, setting *atLeastOne to true
// the moment the first event (not error) is observed.
func observeLastRun(upstream stream.Stream, atLeastOne *bool) stream.Stream {
	return func(yield func(event.Event, error) bool) {
		for ev, err := range upstream {
			if err == nil {
				*atLeastOne = true
			}
			if !yield(ev, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}
