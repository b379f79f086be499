package graph

import (
	"context"
	"sync"
	"testing"

	"github.com/senoroctopus/octopus/plugin"
	"github.com/senoroctopus/octopus/providers/observability"
	"github.com/senoroctopus/octopus/stream"
)

// recordingProvider is a minimal observability.Provider fake that records
// span starts/ends and log calls, mirroring the teacher's fakes in
// providers/observability/slogobs/handler_test.go rather than a mock
// framework.
type recordingProvider struct {
	mu         sync.Mutex
	spans      []string
	logs       []string
	endedOK    int
	endedError int
}

func (p *recordingProvider) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	p.mu.Lock()
	p.spans = append(p.spans, name)
	p.mu.Unlock()
	return ctx, &recordingSpan{provider: p}
}

func (p *recordingProvider) Counter(string) observability.Counter     { return noopCounter{} }
func (p *recordingProvider) Histogram(string) observability.Histogram { return noopHistogram{} }

func (p *recordingProvider) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	p.record(msg)
}
func (p *recordingProvider) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	p.record(msg)
}
func (p *recordingProvider) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	p.record(msg)
}
func (p *recordingProvider) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	p.record(msg)
}
func (p *recordingProvider) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	p.record(msg)
}

func (p *recordingProvider) record(msg string) {
	p.mu.Lock()
	p.logs = append(p.logs, msg)
	p.mu.Unlock()
}

type recordingSpan struct {
	provider *recordingProvider
}

func (s *recordingSpan) End() {}
func (s *recordingSpan) SetAttributes(attrs ...observability.Attribute) {}
func (s *recordingSpan) SetStatus(code observability.StatusCode, description string) {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	if code == observability.StatusOK {
		s.provider.endedOK++
	} else if code == observability.StatusError {
		s.provider.endedError++
	}
}
func (s *recordingSpan) RecordError(err error)                        {}
func (s *recordingSpan) AddEvent(name string, attrs ...observability.Attribute) {}

type noopCounter struct{}

func (noopCounter) Add(context.Context, int64, ...observability.Attribute) {}

type noopHistogram struct{}

func (noopHistogram) Record(context.Context, float64, ...observability.Attribute) {}

// TestRunSource_StartsAndEndsASpanPerInvocation checks that RunSource starts
// exactly one span for the invocation (tagged with a fresh trace ID) and
// ends it with an OK status once every fanned-out child has finished.
func TestRunSource_StartsAndEndsASpanPerInvocation(t *testing.T) {
	sink := &countingSink{}
	registry := plugin.NewRegistry()
	mustRegister(t, registry, plugin.Plugin{ID: "five", Role: plugin.RoleSource, Source: fiveEventSource})
	mustRegister(t, registry, plugin.Plugin{ID: "counter", Role: plugin.RoleSink, Sink: sink.sink})

	config := map[string]map[string]any{
		"src": {"plugin": "five", "flow": "-> snk"},
		"snk": {"plugin": "counter", "flow": "src ->"},
	}
	dag, err := Build(config, registry)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	provider := &recordingProvider{}
	ctx := observability.ContextWithObserver(context.Background(), provider)

	src, _ := dag.Node("src")
	if err := src.RunSource(ctx, NewRealClock()); err != nil {
		t.Fatalf("RunSource failed: %v", err)
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()
	if len(provider.spans) != 1 {
		t.Fatalf("spans started = %d, want 1", len(provider.spans))
	}
	if provider.spans[0] != observability.SpanSourceRun {
		t.Fatalf("span name = %q, want %q", provider.spans[0], observability.SpanSourceRun)
	}
	if provider.endedOK != 1 {
		t.Fatalf("spans ended OK = %d, want 1", provider.endedOK)
	}
	if provider.endedError != 0 {
		t.Fatalf("spans ended error = %d, want 0", provider.endedError)
	}
}

// TestRunSource_ConstructionFailureEndsSpanWithError checks that a
// plugin-level construction failure still ends the span, marked as an error.
func TestRunSource_ConstructionFailureEndsSpanWithError(t *testing.T) {
	registry := plugin.NewRegistry()
	mustRegister(t, registry, plugin.Plugin{
		ID:   "broken",
		Role: plugin.RoleSource,
		Source: func(ctx context.Context, config map[string]any) (stream.Stream, error) {
			return nil, errConstructionFailed
		},
	})
	mustRegister(t, registry, plugin.Plugin{
		ID:   "drain",
		Role: plugin.RoleSink,
		Sink: func(ctx context.Context, upstream stream.Stream, config map[string]any) error {
			return stream.Drain(upstream)
		},
	})

	config := map[string]map[string]any{
		"src": {"plugin": "broken", "flow": "-> snk"},
		"snk": {"plugin": "drain", "flow": "src ->"},
	}
	dag, err := Build(config, registry)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	provider := &recordingProvider{}
	ctx := observability.ContextWithObserver(context.Background(), provider)

	src, _ := dag.Node("src")
	if err := src.RunSource(ctx, NewRealClock()); err == nil {
		t.Fatal("expected RunSource to propagate the construction failure")
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()
	if provider.endedError != 1 {
		t.Fatalf("spans ended error = %d, want 1", provider.endedError)
	}
	if provider.endedOK != 0 {
		t.Fatalf("spans ended OK = %d, want 0", provider.endedOK)
	}
}
