package graph

import (
	"fmt"
	"sort"
)

// checkAcyclicAndAssignLevels runs Kahn's algorithm over the derived edges
// to confirm the graph is acyclic, following the same approach as the
// teacher's kahnTopologicalSort: track in-degree per node, repeatedly peel
// off the zero-in-degree frontier, and treat any node still carrying
// positive in-degree once the frontier is exhausted as proof of a cycle.
// Source roles have in-degree zero by construction (deriveEdges never
// targets one), but two filters can legally point back at each other, so
// this check is not purely defensive.
//
// Levels themselves aren't retained on DAG today — nothing downstream reads
// them yet — but computing them here is how the cycle check is performed,
// mirroring the teacher's combined sort+detect pass.
func checkAcyclicAndAssignLevels(nodes map[string]*Node, edges [][2]string, nodeOrder []string) error {
	inDegree := make(map[string]int, len(nodes))
	adjacency := make(map[string][]string, len(nodes))
	for name := range nodes {
		inDegree[name] = 0
		adjacency[name] = nil
	}
	for _, e := range edges {
		adjacency[e[0]] = append(adjacency[e[0]], e[1])
		inDegree[e[1]]++
	}

	position := make(map[string]int, len(nodeOrder))
	for i, name := range nodeOrder {
		position[name] = i
	}

	var frontier []string
	for name, degree := range inDegree {
		if degree == 0 {
			frontier = append(frontier, name)
		}
	}
	sort.Slice(frontier, func(i, j int) bool { return position[frontier[i]] < position[frontier[j]] })

	processed := 0
	for len(frontier) > 0 {
		processed += len(frontier)
		var next []string
		for _, name := range frontier {
			for _, neighbor := range adjacency[name] {
				inDegree[neighbor]--
				if inDegree[neighbor] == 0 {
					next = append(next, neighbor)
				}
			}
		}
		sort.Slice(next, func(i, j int) bool { return position[next[i]] < position[next[j]] })
		frontier = next
	}

	if processed != len(nodes) {
		var stuck []string
		for name, degree := range inDegree {
			if degree > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return fmt.Errorf("%w: involving nodes %v", ErrCycle, stuck)
	}

	return nil
}
