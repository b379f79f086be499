package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/senoroctopus/octopus/event"
	"github.com/senoroctopus/octopus/plugin"
	"github.com/senoroctopus/octopus/stream"
)

func testRegistry(t *testing.T) *plugin.Registry {
	t.Helper()
	r := plugin.NewRegistry()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("registering test plugin: %v", err)
		}
	}

	must(r.Register(plugin.Plugin{
		ID:   "test.source",
		Role: plugin.RoleSource,
		Schema: plugin.Schema{
			"rate": plugin.Field{Type: "integer", Default: int64(1)},
		},
		Source: func(ctx context.Context, config map[string]any) (stream.Stream, error) {
			return stream.FromSlice([]event.Event{event.New("t", 1)}), nil
		},
	}))
	must(r.Register(plugin.Plugin{
		ID:   "test.filter",
		Role: plugin.RoleFilter,
		Filter: func(ctx context.Context, upstream stream.Stream, config map[string]any) (stream.Stream, error) {
			return upstream, nil
		},
	}))
	must(r.Register(plugin.Plugin{
		ID:   "test.sink",
		Role: plugin.RoleSink,
		Schema: plugin.Schema{
			"label": plugin.Field{Type: "string", Required: true},
		},
		Sink: func(ctx context.Context, upstream stream.Stream, config map[string]any) error {
			return stream.Drain(upstream)
		},
	}))

	return r
}

func TestBuild_SimpleChain(t *testing.T) {
	config := map[string]map[string]any{
		"src":  {"plugin": "test.source", "flow": "-> f"},
		"f":    {"plugin": "test.filter", "flow": "src -> snk"},
		"snk":  {"plugin": "test.sink", "flow": "f ->", "label": "out"},
	}

	dag, err := Build(config, testRegistry(t))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(dag.Roots) != 1 || dag.Roots[0].Name != "src" {
		t.Fatalf("unexpected roots: %+v", dag.Roots)
	}

	snk, ok := dag.Node("snk")
	if !ok {
		t.Fatal("expected snk node")
	}
	if snk.Config["label"] != "out" {
		t.Fatalf("unexpected sink config: %+v", snk.Config)
	}

	src, _ := dag.Node("src")
	if src.Config["rate"] != int64(1) {
		t.Fatalf("expected default rate filled in, got %+v", src.Config)
	}
}

func TestBuild_MissingFlowFails(t *testing.T) {
	config := map[string]map[string]any{
		"src": {"plugin": "test.source"},
	}
	_, err := Build(config, testRegistry(t))
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestBuild_MissingPluginFails(t *testing.T) {
	config := map[string]map[string]any{
		"src": {"flow": "-> *"},
	}
	_, err := Build(config, testRegistry(t))
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestBuild_UnknownPluginFails(t *testing.T) {
	config := map[string]map[string]any{
		"src": {"plugin": "does.not.exist", "flow": "-> *"},
	}
	_, err := Build(config, testRegistry(t))
	if !errors.Is(err, plugin.ErrUnknownPlugin) {
		t.Fatalf("expected ErrUnknownPlugin, got %v", err)
	}
}

func TestBuild_UnknownConfigKeyFails(t *testing.T) {
	config := map[string]map[string]any{
		"src": {"plugin": "test.source", "flow": "-> snk", "bogus": "value"},
		"snk": {"plugin": "test.sink", "flow": "src ->", "label": "out"},
	}
	_, err := Build(config, testRegistry(t))
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestBuild_MissingRequiredConfigFails(t *testing.T) {
	config := map[string]map[string]any{
		"src": {"plugin": "test.source", "flow": "-> snk"},
		"snk": {"plugin": "test.sink", "flow": "src ->"},
	}
	_, err := Build(config, testRegistry(t))
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestBuild_NodeWithNoChildrenFails(t *testing.T) {
	config := map[string]map[string]any{
		"src": {"plugin": "test.source", "flow": "-> nowhere"},
	}
	_, err := Build(config, testRegistry(t))
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestBuild_CycleFails(t *testing.T) {
	config := map[string]map[string]any{
		"p": {"plugin": "test.filter", "flow": "* -> q"},
		"q": {"plugin": "test.filter", "flow": "* -> p"},
	}
	_, err := Build(config, testRegistry(t))
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestBuild_FanOutSharedSink(t *testing.T) {
	config := map[string]map[string]any{
		"src":     {"plugin": "test.source", "flow": "-> filterA,filterB"},
		"filterA": {"plugin": "test.filter", "flow": "src -> sink"},
		"filterB": {"plugin": "test.filter", "flow": "src -> sink"},
		"sink":    {"plugin": "test.sink", "flow": "filterA,filterB ->", "label": "out"},
	}
	dag, err := Build(config, testRegistry(t))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	src, _ := dag.Node("src")
	if len(src.Children) != 2 {
		t.Fatalf("expected source to fan out to 2 children, got %d", len(src.Children))
	}

	sink, _ := dag.Node("sink")
	if len(sink.Parents) != 2 {
		t.Fatalf("expected sink to have 2 parents, got %d", len(sink.Parents))
	}
}

func TestBuild_RoleMismatchBetweenFlowAndPluginFails(t *testing.T) {
	config := map[string]map[string]any{
		"src": {"plugin": "test.filter", "flow": "-> *"},
	}
	_, err := Build(config, testRegistry(t))
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}
