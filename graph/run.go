package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/senoroctopus/octopus/event"
	"github.com/senoroctopus/octopus/plugin"
	"github.com/senoroctopus/octopus/providers/observability"
	"github.com/senoroctopus/octopus/stream"
)

// RunSource implements spec §4.6's Source.run: invoke the plugin to obtain a
// Stream, trace every event crossing the edge, tee to each child, and
// invoke each child's run with its own copy. Returns once every child
// invocation has returned, joining any errors they reported. A failure
// returned directly by the plugin (construction/setup failure, as opposed
// to a mid-stream event error) aborts before any child runs.
func (n *Node) RunSource(ctx context.Context, clock Clock) (err error) {
	ctx, endSpan := startSourceSpan(ctx, n.Name)
	defer func() { endSpan(err) }()

	s, srcErr := n.Plugin.Source(ctx, n.Config)
	if srcErr != nil {
		logConstructionFailure(ctx, n.Name, n.Config, srcErr)
		err = fmt.Errorf("source %q: %w", n.Name, srcErr)
		return err
	}
	err = n.fanOut(ctx, clock, wrapTrace(ctx, n.Name, s))
	return err
}

// RunFilter implements spec §4.6's Filter.run(stream): invoke the plugin
// against upstream to obtain a derived Stream, then tee and dispatch to
// children exactly as RunSource does.
func (n *Node) RunFilter(ctx context.Context, clock Clock, upstream stream.Stream) error {
	s, err := n.Plugin.Filter(ctx, upstream, n.Config)
	if err != nil {
		logConstructionFailure(ctx, n.Name, n.Config, err)
		return fmt.Errorf("filter %q: %w", n.Name, err)
	}
	return n.fanOut(ctx, clock, wrapTrace(ctx, n.Name, s))
}

// RunSink implements spec §4.5/§4.6's terminal Sink.run: trace the incoming
// stream, gate it through the throttle policy if configured, and either
// invoke the plugin directly or — when Batch is set — enqueue onto the
// sink's long-lived batch worker (started separately via
// DAG.StartBatchWorkers) instead of invoking the plugin inline.
func (n *Node) RunSink(ctx context.Context, clock Clock, upstream stream.Stream) error {
	traced := wrapTrace(ctx, n.Name, upstream)

	invoke := func(s stream.Stream) error {
		return n.Plugin.Sink(ctx, s, n.Config)
	}
	if n.Batch > 0 {
		invoke = func(s stream.Stream) error {
			if n.queue == nil {
				return fmt.Errorf("sink %q: batch queue was never allocated", n.Name)
			}
			for ev, err := range s {
				if err != nil {
					return err
				}
				n.queue.push(ev)
			}
			return nil
		}
	}

	if n.Throttle > 0 {
		return n.RunThrottled(clock, traced, invoke)
	}
	return invoke(traced)
}

// fanOut tees s to one copy per child and dispatches each child's run
// concurrently, by role, returning a joined error once every child has
// returned. A node with no children (only possible for a Sink, which never
// reaches fanOut) would drain s and return nil.
func (n *Node) fanOut(ctx context.Context, clock Clock, s stream.Stream) error {
	if len(n.Children) == 0 {
		return stream.Drain(s)
	}

	copies := stream.Tee(s, len(n.Children))

	errs := make([]error, len(n.Children))
	done := make(chan int, len(n.Children))
	for i, child := range n.Children {
		go func(i int, child *Node, upstream stream.Stream) {
			errs[i] = child.run(ctx, clock, upstream)
			done <- i
		}(i, child, copies[i])
	}
	for range n.Children {
		<-done
	}

	return errors.Join(errs...)
}

// run dispatches to the role-appropriate entry point. Only Filter and Sink
// children are reachable here — a Source never has parents, so it is never
// a fan-out target.
func (n *Node) run(ctx context.Context, clock Clock, upstream stream.Stream) error {
	switch n.Role {
	case plugin.RoleFilter:
		return n.RunFilter(ctx, clock, upstream)
	case plugin.RoleSink:
		return n.RunSink(ctx, clock, upstream)
	default:
		return fmt.Errorf("node %q: unexpected role %q as a fan-out target", n.Name, n.Role)
	}
}

// wrapTrace logs every event crossing this node's outgoing edge at DEBUG,
// per spec §6.5, using whatever observability.Provider is attached to ctx;
// a nil provider makes this a transparent passthrough.
func wrapTrace(ctx context.Context, nodeName string, s stream.Stream) stream.Stream {
	provider := observability.ObserverFromContext(ctx)
	if provider == nil {
		return s
	}
	return func(yield func(event.Event, error) bool) {
		for ev, err := range s {
			if err == nil {
				provider.Debug(ctx, "event",
					observability.String("node", nodeName),
					observability.String("event.name", ev.Name),
				)
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
