package graph

import (
	"sort"
	"testing"

	"github.com/senoroctopus/octopus/plugin"
)

func TestParseFlow_RoleDerivation(t *testing.T) {
	tests := []struct {
		name string
		flow string
		want plugin.Role
	}{
		{"empty lhs is source", "-> *", plugin.RoleSource},
		{"empty rhs is sink", "* ->", plugin.RoleSink},
		{"both sides present is filter", "* -> d,e", plugin.RoleFilter},
		{"both sides empty is source", " -> ", plugin.RoleSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFlow(tt.flow)
			if err != nil {
				t.Fatalf("ParseFlow(%q) failed: %v", tt.flow, err)
			}
			if got := f.Role(); got != tt.want {
				t.Fatalf("Role() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFlow_RejectsMissingOrDuplicateArrow(t *testing.T) {
	for _, raw := range []string{"no arrow here", "a -> b -> c"} {
		if _, err := ParseFlow(raw); err == nil {
			t.Fatalf("ParseFlow(%q): expected error", raw)
		}
	}
}

// TestDeriveEdges_FlowGrammarScenario reproduces the spec's worked example:
// a: -> *, b: -> c, c: * -> d,e, d: * ->, e: c,b ->
// expected edges: a→c, a→d, b→c, c→d, c→e (a→e and b→d must NOT appear).
func TestDeriveEdges_FlowGrammarScenario(t *testing.T) {
	raw := map[string]string{
		"a": "-> *",
		"b": "-> c",
		"c": "* -> d,e",
		"d": "* ->",
		"e": "c,b ->",
	}

	flows := make(map[string]Flow, len(raw))
	roles := make(map[string]plugin.Role, len(raw))
	for name, f := range raw {
		parsed, err := ParseFlow(f)
		if err != nil {
			t.Fatalf("ParseFlow(%q): %v", f, err)
		}
		flows[name] = parsed
		roles[name] = parsed.Role()
	}

	edges := deriveEdges(flows, roles)

	got := make([]string, 0, len(edges))
	for _, e := range edges {
		got = append(got, e[0]+"->"+e[1])
	}
	sort.Strings(got)

	want := []string{"a->c", "a->d", "b->c", "c->d", "c->e"}
	if len(got) != len(want) {
		t.Fatalf("edges = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("edges = %v, want %v", got, want)
		}
	}
}
