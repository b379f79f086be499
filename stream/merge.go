package stream

import (
	"context"
	"sync"

	"github.com/senoroctopus/octopus/event"
)

// mergeItem carries one event, or one terminal error, from a merge input to
// the merged consumer. Each input is relayed by its own goroutine, so
// per-input FIFO order is preserved even though no ordering is promised
// across inputs.
type mergeItem struct {
	ev  event.Event
	err error
}

// Merge fans M Streams in to one, yielding events in the order they become
// ready from any input. There is no ordering guarantee between inputs, but
// events from the same input are delivered FIFO. Merge ends once every input
// has ended. The first non-nil error from any input is yielded once, the
// remaining inputs are cancelled (their range loops are broken, releasing
// their resources the same way an early consumer break does), and no further
// events are yielded.
func Merge(inputs ...Stream) Stream {
	return func(yield func(event.Event, error) bool) {
		if len(inputs) == 0 {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out := make(chan mergeItem)
		var wg sync.WaitGroup
		wg.Add(len(inputs))
		for _, in := range inputs {
			go forwardInto(ctx, in, out, &wg)
		}
		go func() {
			wg.Wait()
			close(out)
		}()

		failed := false
		for item := range out {
			if item.err != nil {
				if failed {
					continue
				}
				failed = true
				cancel()
				if !yield(event.Event{}, item.err) {
					return
				}
				continue
			}
			if failed {
				continue
			}
			if !yield(item.ev, nil) {
				cancel()
				return
			}
		}
	}
}

// forwardInto ranges over one merge input, relaying every event (or its
// terminal error) onto out. It stops as soon as ctx is cancelled by a
// sibling's failure or by the merged consumer walking away, which lets the
// input Stream's own deferred cleanup run.
func forwardInto(ctx context.Context, in Stream, out chan<- mergeItem, wg *sync.WaitGroup) {
	defer wg.Done()
	for ev, err := range in {
		select {
		case out <- mergeItem{ev: ev, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}
