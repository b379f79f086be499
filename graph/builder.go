package graph

import (
	"fmt"
	"sort"

	"github.com/senoroctopus/octopus/plugin"
)

// Build parses a configuration document — a mapping from node name to its
// section map — into a DAG, resolving each section's plugin through
// registry and validating its parameters against the plugin's schema.
//
// Each section must carry a "plugin" string and a "flow" string; missing
// either fails with ErrInvalidConfiguration. An unregistered plugin id fails
// via the registry's ErrUnknownPlugin. The section's remaining keys (after
// plugin, flow, and the policy keys schedule/throttle/batch are stripped)
// are validated and coerced against the resolved plugin's schema.
func Build(config map[string]map[string]any, registry *plugin.Registry) (*DAG, error) {
	if len(config) == 0 {
		return nil, fmt.Errorf("%w: configuration has no nodes", ErrInvalidConfiguration)
	}

	nodes := make(map[string]*Node, len(config))
	flows := make(map[string]Flow, len(config))
	roles := make(map[string]plugin.Role, len(config))

	names := make([]string, 0, len(config))
	for name := range config {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		section := config[name]

		node, flow, err := buildNode(name, section, registry)
		if err != nil {
			return nil, err
		}

		nodes[name] = node
		flows[name] = flow
		roles[name] = node.Role
	}

	edges := deriveEdges(flows, roles)

	if err := wireEdges(nodes, edges); err != nil {
		return nil, err
	}

	if err := checkAcyclicAndAssignLevels(nodes, edges, names); err != nil {
		return nil, err
	}

	if err := validateChildCounts(nodes, names); err != nil {
		return nil, err
	}

	dag := &DAG{nodes: nodes}
	for _, name := range names {
		if nodes[name].Role == plugin.RoleSource {
			dag.Roots = append(dag.Roots, nodes[name])
		}
	}

	return dag, nil
}

// buildNode parses and validates one configuration section into a Node
// (without Children/Parents, filled in later by wireEdges).
func buildNode(name string, section map[string]any, registry *plugin.Registry) (*Node, Flow, error) {
	rawFlow, ok := section["flow"].(string)
	if !ok || rawFlow == "" {
		return nil, Flow{}, fmt.Errorf("%w: node %q: missing flow", ErrInvalidConfiguration, name)
	}
	flow, err := ParseFlow(rawFlow)
	if err != nil {
		return nil, Flow{}, err
	}

	pluginID, ok := section["plugin"].(string)
	if !ok || pluginID == "" {
		return nil, Flow{}, fmt.Errorf("%w: node %q: missing plugin", ErrInvalidConfiguration, name)
	}
	p, err := registry.Resolve(pluginID)
	if err != nil {
		return nil, Flow{}, fmt.Errorf("node %q: %w", name, err)
	}

	role := flow.Role()
	if p.Role != role {
		return nil, Flow{}, fmt.Errorf("%w: node %q: flow implies role %q but plugin %q is role %q",
			ErrInvalidConfiguration, name, role, pluginID, p.Role)
	}

	node := &Node{Name: name, Role: role, Plugin: p, Flow: flow}

	if role == plugin.RoleSource {
		if schedule, ok := section["schedule"].(string); ok {
			node.Schedule = schedule
		}
	}
	if role == plugin.RoleSink {
		if throttle, ok := section["throttle"]; ok {
			d, err := parseDuration(throttle)
			if err != nil {
				return nil, Flow{}, fmt.Errorf("%w: node %q: throttle: %v", ErrInvalidConfiguration, name, err)
			}
			node.Throttle = d
		}
		if batch, ok := section["batch"]; ok {
			d, err := parseDuration(batch)
			if err != nil {
				return nil, Flow{}, fmt.Errorf("%w: node %q: batch: %v", ErrInvalidConfiguration, name, err)
			}
			node.Batch = d
		}
		if node.Batch > 0 {
			node.queue = newEventQueue()
		}
	}

	params := make(map[string]any, len(section))
	for k, v := range section {
		if reservedKeys[k] {
			continue
		}
		params[k] = v
	}
	config, err := validateConfig(name, p.Schema, params)
	if err != nil {
		return nil, Flow{}, err
	}
	node.Config = config

	return node, flow, nil
}

// wireEdges attaches Children/Parents pointers from the derived edge list.
func wireEdges(nodes map[string]*Node, edges [][2]string) error {
	for _, e := range edges {
		from, to := nodes[e[0]], nodes[e[1]]
		from.Children = append(from.Children, to)
		to.Parents = append(to.Parents, from)
	}
	return nil
}

// validateChildCounts enforces the data model's invariants: a Source or
// Filter with no children is a terminal error at graph-build time (Sinks
// are expected to have none); a Filter must also have at least one parent.
func validateChildCounts(nodes map[string]*Node, names []string) error {
	for _, name := range names {
		n := nodes[name]
		switch n.Role {
		case plugin.RoleSource, plugin.RoleFilter:
			if len(n.Children) == 0 {
				return fmt.Errorf("%w: node %q has no children", ErrInvalidConfiguration, name)
			}
		}
		if n.Role == plugin.RoleFilter && len(n.Parents) == 0 {
			return fmt.Errorf("%w: filter %q has no parents", ErrInvalidConfiguration, name)
		}
	}
	return nil
}
