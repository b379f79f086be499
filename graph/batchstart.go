package graph

import (
	"context"

	"github.com/senoroctopus/octopus/stream"
)

// StartBatchWorkers spawns the long-lived batch worker goroutine for every
// Sink in the DAG that has Batch set. Each worker runs for the lifetime of
// ctx (the scheduler's root context); onFlushError is called with the
// offending node whenever a flush's plugin invocation fails, per spec
// §4.5's "plugin failure inside the worker is logged and does not kill the
// worker" rule. Must be called once before the scheduler starts firing
// sources, since RunSink assumes the worker is already draining its queue.
func (d *DAG) StartBatchWorkers(ctx context.Context, clock Clock, onFlushError func(n *Node, err error)) {
	_ = d.Walk(func(n *Node) error {
		if n.Batch <= 0 {
			return nil
		}
		invoke := func(s stream.Stream) error {
			return n.Plugin.Sink(ctx, s, n.Config)
		}
		flushErr := func(err error) {
			if onFlushError != nil {
				onFlushError(n, err)
			}
		}
		go n.RunBatchWorker(ctx, clock, n.queue, invoke, flushErr)
		return nil
	})
}
