package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/senoroctopus/octopus/plugin"
)

// Flow is one node's parsed `flow` string: `<LHS> -> <RHS>`, where each side
// is empty, the wildcard `*`, or a comma-separated list of node names.
type Flow struct {
	Raw string

	LHSAny bool
	LHS    []string

	RHSAny bool
	RHS    []string
}

// ParseFlow parses the `flow` grammar. It fails only when the `->` separator
// is missing or appears more than once; an empty LHS or RHS is valid (it's
// how source and sink roles are expressed).
func ParseFlow(raw string) (Flow, error) {
	parts := strings.Split(raw, "->")
	if len(parts) != 2 {
		return Flow{}, fmt.Errorf("%w: flow %q must contain exactly one \"->\"", ErrInvalidConfiguration, raw)
	}

	lhsAny, lhs := parseFlowSide(parts[0])
	rhsAny, rhs := parseFlowSide(parts[1])

	return Flow{Raw: raw, LHSAny: lhsAny, LHS: lhs, RHSAny: rhsAny, RHS: rhs}, nil
}

// parseFlowSide parses one side of the `->`. An empty (or all-whitespace)
// side yields (false, nil). "*" yields (true, nil). Otherwise it's a
// comma-separated list of node names.
func parseFlowSide(raw string) (wildcard bool, names []string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false, nil
	}
	if trimmed == "*" {
		return true, nil
	}
	for _, part := range strings.Split(trimmed, ",") {
		name := strings.TrimSpace(part)
		if name != "" {
			names = append(names, name)
		}
	}
	return false, names
}

// Role derives the node's role from the flow: an empty LHS means source, an
// empty RHS means sink (checked second, so a node with both sides empty is
// a source — matching "LHS empty ⇒ source" being evaluated first), anything
// else is a filter. Note that "*" is not empty: a node declared "* ->" is a
// sink whose parents are unconstrained, not a source.
func (f Flow) Role() plugin.Role {
	switch {
	case !f.LHSAny && len(f.LHS) == 0:
		return plugin.RoleSource
	case !f.RHSAny && len(f.RHS) == 0:
		return plugin.RoleSink
	default:
		return plugin.RoleFilter
	}
}

// matchesRHS reports whether name is reachable as a downstream target of
// this flow: either the RHS is the wildcard, or name is explicitly listed.
func (f Flow) matchesRHS(name string) bool {
	return matchesSide(f.RHSAny, f.RHS, name)
}

// matchesLHS reports whether name is an acceptable upstream parent of this
// flow: either the LHS is the wildcard, or name is explicitly listed.
func (f Flow) matchesLHS(name string) bool {
	return matchesSide(f.LHSAny, f.LHS, name)
}

func matchesSide(any bool, names []string, name string) bool {
	if any {
		return true
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// deriveEdges computes the edge set for a set of parsed flows: an edge
// origin→target exists iff origin.flow matches target as an RHS AND
// target.flow matches origin as an LHS, for every target whose role is
// filter or sink (sources never receive edges). The result is sorted by
// (origin, target) for determinism.
func deriveEdges(flows map[string]Flow, roles map[string]plugin.Role) [][2]string {
	names := make([]string, 0, len(flows))
	for name := range flows {
		names = append(names, name)
	}
	sort.Strings(names)

	var edges [][2]string
	for _, target := range names {
		if roles[target] == plugin.RoleSource {
			continue
		}
		for _, origin := range names {
			if origin == target {
				continue
			}
			if flows[origin].matchesRHS(target) && flows[target].matchesLHS(origin) {
				edges = append(edges, [2]string{origin, target})
			}
		}
	}
	return edges
}
