// Package builtin registers the handful of reference plugins cmd/octopus
// ships with out of the box, so the binary has something runnable without
// requiring an external plugin loading mechanism (out of scope per the
// runtime's own plugin ABI — see plugin.Plugin). Real deployments are
// expected to register their own source/filter/sink callables against the
// same plugin.Registry before calling graph.Build.
package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/senoroctopus/octopus/event"
	"github.com/senoroctopus/octopus/plugin"
	"github.com/senoroctopus/octopus/providers/observability"
	"github.com/senoroctopus/octopus/stream"
)

// tickParams is the configuration for source.tick, auto-derived into a
// plugin.Schema by plugin.DeriveSchema.
type tickParams struct {
	// Interval between emitted ticks, e.g. "5s".
	Interval string `default:"1s"`
}

// logParams is the configuration for sink.log.
type logParams struct {
	// Prefix is prepended to every logged event name.
	Prefix string `default:""`
}

// Register adds every built-in plugin to r. Returns the first registration
// error, if any (only possible if a caller already registered a plugin under
// one of these reserved IDs).
func Register(r *plugin.Registry) error {
	tickSchema, err := plugin.DeriveSchema[tickParams]()
	if err != nil {
		return fmt.Errorf("builtin: deriving source.tick schema: %w", err)
	}
	logSchema, err := plugin.DeriveSchema[logParams]()
	if err != nil {
		return fmt.Errorf("builtin: deriving sink.log schema: %w", err)
	}

	plugins := []plugin.Plugin{
		{ID: "source.tick", Role: plugin.RoleSource, Source: tickSource, Schema: tickSchema},
		{ID: "filter.identity", Role: plugin.RoleFilter, Filter: identityFilter},
		{ID: "sink.log", Role: plugin.RoleSink, Sink: logSink, Schema: logSchema},
	}
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			return fmt.Errorf("builtin: registering %q: %w", p.ID, err)
		}
	}
	return nil
}

// tickSource emits one event named "tick" per configured interval until ctx
// is cancelled. A continuous, event-driven reference source: real sources
// (MQTT, SQL polling, webhook listeners) follow the same shape — block on
// the next unit of work, yield it, repeat until cancelled.
func tickSource(ctx context.Context, config map[string]any) (stream.Stream, error) {
	interval := time.Second
	if raw, ok := config["interval"]; ok {
		s, _ := raw.(string)
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("source.tick: invalid interval %q: %w", s, err)
		}
		interval = d
	}

	return func(yield func(event.Event, error) bool) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !yield(event.New("tick", nil), nil) {
					return
				}
			}
		}
	}, nil
}

// identityFilter passes every event through unchanged. A reference filter
// standing in for real transforms (rename, coerce, enrich).
func identityFilter(ctx context.Context, upstream stream.Stream, config map[string]any) (stream.Stream, error) {
	return upstream, nil
}

// logSink writes every event it receives through the observability provider
// attached to ctx, falling back to nothing if none is attached (the runtime
// never requires observability to be configured).
func logSink(ctx context.Context, upstream stream.Stream, config map[string]any) error {
	prefix, _ := config["prefix"].(string)
	provider := observability.ObserverFromContext(ctx)

	for ev, err := range upstream {
		if err != nil {
			return err
		}
		if provider == nil {
			continue
		}
		name := ev.Name
		if prefix != "" {
			name = prefix + name
		}
		provider.Info(ctx, "event",
			observability.String(observability.AttrEventName, name),
			observability.String(observability.AttrEventTimestamp, ev.Timestamp.Format(time.RFC3339)),
		)
	}
	return nil
}
