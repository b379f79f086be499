package graph

import "testing"

func TestDAG_WalkVisitsEveryNodeOnce(t *testing.T) {
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

	visits := make(map[string]int)
	err = dag.Walk(func(n *Node) error {
		visits[n.Name]++
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	for _, name := range []string{"src", "filterA", "filterB", "sink"} {
		if visits[name] != 1 {
			t.Fatalf("node %q visited %d times, want 1", name, visits[name])
		}
	}
}
