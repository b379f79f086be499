package graph

import (
	"context"

	"github.com/google/uuid"

	"github.com/senoroctopus/octopus/internal/utils"
	"github.com/senoroctopus/octopus/providers/observability"
)

// startSourceSpan mints a unique trace ID for one Source invocation and
// starts a span tagged with it, mirroring the teacher's
// observeGraphStart/observeNodeStart pair in patterns/graph/observe.go. The
// trace ID lets every event a fan-out produces from this one invocation be
// correlated back to it in logs, even after Tee splits the stream across
// concurrently running children. Returns the updated context and a close
// function that ends the span, recording err if non-nil; both are no-ops
// when no provider is attached to ctx.
func startSourceSpan(ctx context.Context, nodeName string) (context.Context, func(err error)) {
	provider := observability.ObserverFromContext(ctx)
	if provider == nil {
		return ctx, func(error) {}
	}

	traceID := uuid.New().String()
	ctx, span := provider.StartSpan(ctx, observability.SpanSourceRun,
		observability.String(observability.AttrNodeName, nodeName),
		observability.String("trace.id", traceID),
	)
	provider.Info(ctx, "source started",
		observability.String(observability.AttrNodeName, nodeName),
		observability.String("trace.id", traceID),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, "source run failed")
		} else {
			span.SetStatus(observability.StatusOK, "source run completed")
		}
		span.End()
	}
}

// logConstructionFailure reports a plugin's construction-time failure (as
// opposed to a mid-stream event error) at ERROR, attaching the node's raw
// configuration so the failure can be diagnosed without reproducing the run.
// A no-op when ctx carries no provider.
func logConstructionFailure(ctx context.Context, nodeName string, config map[string]any, err error) {
	provider := observability.ObserverFromContext(ctx)
	if provider == nil {
		return
	}
	provider.Error(ctx, "plugin construction failed",
		observability.String(observability.AttrNodeName, nodeName),
		observability.Error(err),
		observability.String("node.config", utils.ToString(config)),
	)
}
