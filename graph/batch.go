package graph

import (
	"context"
	"sync"
	"time"

	"github.com/senoroctopus/octopus/event"
	"github.com/senoroctopus/octopus/stream"
)

// eventQueue is the unbounded FIFO spec §3 gives every batching Sink. It's a
// slice guarded by a mutex rather than a buffered channel, because a batch
// worker needs to drain everything queued so far in one step without
// knowing its size up front — an operator-facing bound is a possible future
// extension (spec §9 redesign notes), not implemented here.
type eventQueue struct {
	mu     sync.Mutex
	items  []event.Event
	notify chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{notify: make(chan struct{}, 1)}
}

// push appends e and wakes the worker if it's waiting.
func (q *eventQueue) push(e event.Event) {
	q.mu.Lock()
	q.items = append(q.items, e)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// drain removes and returns everything currently queued.
func (q *eventQueue) drain() []event.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// RunBatchWorker implements the worker loop from spec §4.5: wait
// unboundedly for the first event of a batch, start the window on arrival,
// then wait out the remainder of the window (re-draining the queue each
// time it's woken early by new arrivals) until it elapses, flushing
// whatever was buffered as a single invoke call. On cancellation it flushes
// the in-flight buffer (if any) and returns. invoke failures are logged by
// the caller via onFlushError and never stop the worker.
func (n *Node) RunBatchWorker(ctx context.Context, clock Clock, queue *eventQueue, invoke func(stream.Stream) error, onFlushError func(error)) {
	var buffer []event.Event
	var batchStart time.Time
	started := false

	for {
		if !started {
			select {
			case <-queue.notify:
				items := queue.drain()
				if len(items) == 0 {
					continue
				}
				batchStart = clock.Now()
				started = true
				buffer = append(buffer, items...)
			case <-ctx.Done():
				flushRemaining(buffer, invoke, onFlushError)
				return
			}
			continue
		}

		remaining := n.Batch - clock.Now().Sub(batchStart)
		if remaining < 0 {
			remaining = 0
		}
		timer := clock.NewTimer(remaining)

		select {
		case <-queue.notify:
			timer.Stop()
			buffer = append(buffer, queue.drain()...)
		case <-timer.C():
			flush := buffer
			buffer = nil
			started = false
			if err := invoke(stream.FromSlice(flush)); err != nil && onFlushError != nil {
				onFlushError(err)
			}
		case <-ctx.Done():
			timer.Stop()
			flushRemaining(buffer, invoke, onFlushError)
			return
		}
	}
}

// flushRemaining implements the cancellation step: dump whatever is
// currently buffered as one final invocation, if there's anything to dump.
func flushRemaining(buffer []event.Event, invoke func(stream.Stream) error, onFlushError func(error)) {
	if len(buffer) == 0 {
		return
	}
	if err := invoke(stream.FromSlice(buffer)); err != nil && onFlushError != nil {
		onFlushError(err)
	}
}
