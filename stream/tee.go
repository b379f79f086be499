package stream

import "github.com/senoroctopus/octopus/event"

// teeItem is what the driver goroutine hands to each derived consumer: either
// one event, or a terminal error, never both.
type teeItem struct {
	ev  event.Event
	err error
}

// Tee fans one upstream Stream out to n derived Streams. Each consumer
// observes every upstream event exactly once, in order; the upstream is
// driven only once all n consumers have taken the current event, so the
// slowest consumer paces the whole group. Per-consumer channels hold one
// event of slack so faster consumers aren't blocked waiting on the others.
//
// When n == 1 the tee is transparent: the upstream Stream is returned
// unchanged and no goroutine is spawned.
func Tee(upstream Stream, n int) []Stream {
	if n == 1 {
		return []Stream{upstream}
	}
	if n == 0 {
		return nil
	}

	chans := make([]chan teeItem, n)
	dones := make([]chan struct{}, n)
	for i := range chans {
		chans[i] = make(chan teeItem, 1)
		dones[i] = make(chan struct{})
	}

	go driveTee(upstream, chans, dones)

	out := make([]Stream, n)
	for i := range out {
		out[i] = consumerStream(chans[i], dones[i])
	}
	return out
}

// driveTee pulls from upstream and broadcasts each item to every consumer
// channel, blocking on a slow consumer's full buffer. It stops (and thereby
// releases upstream's resources via upstream's own deferred cleanup) as soon
// as every consumer has gone away.
func driveTee(upstream Stream, chans []chan teeItem, dones []chan struct{}) {
	defer func() {
		for _, ch := range chans {
			close(ch)
		}
	}()

	for ev, err := range upstream {
		if err != nil {
			broadcast(teeItem{err: err}, chans, dones)
			return
		}
		if !broadcast(teeItem{ev: ev}, chans, dones) {
			return
		}
	}
}

// broadcast delivers item to every still-active consumer, skipping any that
// have signalled done. Reports whether at least one consumer is still
// active, so the driver knows when to stop pulling from upstream.
func broadcast(item teeItem, chans []chan teeItem, dones []chan struct{}) bool {
	anyActive := false
	for i := range chans {
		select {
		case chans[i] <- item:
			anyActive = true
		case <-dones[i]:
		}
	}
	return anyActive
}

// consumerStream adapts one tee channel back into a pull-based Stream.
func consumerStream(ch <-chan teeItem, done chan struct{}) Stream {
	return func(yield func(event.Event, error) bool) {
		defer close(done)
		for item := range ch {
			if !yield(item.ev, item.err) {
				return
			}
			if item.err != nil {
				return
			}
		}
	}
}
