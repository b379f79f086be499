// Package stream implements Señor Octopus's lazy, single-consumer,
// cooperative asynchronous sequence of events, plus the Tee (fan-out) and
// Merge (fan-in) operators that the graph runtime wires nodes together with.
//
// A Stream is a plain iter.Seq2: range over it to pull events one at a time.
// Producers follow the same convention the teacher's patterns/graph/stream.go
// uses for its NodeStream — acquire resources, defer their release, and stop
// yielding as soon as the consumer's range breaks. A Stream is not
// restartable: once ranged over to completion (or abandoned early), it must
// not be ranged over again.
package stream

import (
	"github.com/senoroctopus/octopus/event"
)

// Stream yields (event, nil) for each element, or (zero, err) for a terminal
// failure, after which the sequence stops. A range loop that exits without
// consuming the whole sequence (break, or a caller-induced cancellation)
// signals the producer to release its resources; producers honor this the
// same way the teacher's node streams do, via a deferred cleanup ahead of
// the yield loop.
type Stream = func(yield func(event.Event, error) bool)

// FromSlice builds a Stream that yields each event in order and then ends.
// Mainly useful for tests and for plugins that produce a bounded set of
// events up front (e.g. a batch flush rendered back into a Stream).
func FromSlice(events []event.Event) Stream {
	return func(yield func(event.Event, error) bool) {
		for _, e := range events {
			if !yield(e, nil) {
				return
			}
		}
	}
}

// FromChannel builds a Stream that relays events off ch until it is closed.
// If errCh fires before ch closes, the error is yielded once and the stream
// ends. Consumers that stop ranging early leave both channels undrained;
// callers that need guaranteed drain should close their own producer
// goroutine on context cancellation.
func FromChannel(ch <-chan event.Event, errCh <-chan error) Stream {
	return func(yield func(event.Event, error) bool) {
		for {
			select {
			case e, ok := <-ch:
				if !ok {
					return
				}
				if !yield(e, nil) {
					return
				}
			case err := <-errCh:
				if err != nil {
					yield(event.Event{}, err)
				}
				return
			}
		}
	}
}

// Collect drains s into a slice, stopping at the first error. Intended for
// tests and for the batch sink policy, which needs the fully materialized
// set of buffered events before invoking a plugin.
func Collect(s Stream) ([]event.Event, error) {
	var out []event.Event
	for e, err := range s {
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Drain ranges over s to completion, discarding every event. Used to release
// upstream resources when a consumer decides it has no use for the events
// themselves (e.g. a throttle gate that rejects a run but must still close
// the stream it was handed).
func Drain(s Stream) error {
	for _, err := range s {
		if err != nil {
			return err
		}
	}
	return nil
}
