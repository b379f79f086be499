// Package graph parses a declarative configuration document into a typed
// directed acyclic graph of sources, filters, and sinks, deriving edges from
// each node's compact `flow` grammar and validating plugin configuration
// against the resolved plugin's schema. It also owns the two sink policies
// (throttle, batch) that sit between a sink's upstream stream and its
// plugin invocation.
//
// The builder is modelled on the teacher's patterns/graph GraphBuilder: node
// and edge bookkeeping accumulated incrementally, a Kahn's-algorithm pass at
// Build() time for level assignment and cycle detection, and a descriptive
// error returned for the first problem found.
package graph

import (
	"errors"
	"sync"
	"time"

	"github.com/senoroctopus/octopus/plugin"
)

// ErrInvalidConfiguration is returned by Build when a section is missing a
// required key (flow, plugin), declares an unknown plugin parameter, omits a
// required one, or otherwise fails config validation.
var ErrInvalidConfiguration = errors.New("graph: invalid configuration")

// ErrCycle is returned by Build when the derived edges are not acyclic. The
// flow grammar's source/filter/sink typing makes most cycles unreachable
// (a source is never a target) but two filters can legally point back at
// each other, so this check is real, not purely defensive.
var ErrCycle = errors.New("graph: cycle detected")

// Node is one vertex of the graph: a Source, Filter, or Sink, tagged by
// Role. All three share Name, Flow, Children, and Parents; Schedule is
// meaningful only for sources, Throttle/Batch/runtime sink state only for
// sinks.
type Node struct {
	Name   string
	Role   plugin.Role
	Plugin plugin.Plugin
	Config map[string]any
	Flow   Flow

	Children []*Node
	Parents  []*Node

	// Schedule is a five-field cron expression for a scheduled Source; empty
	// means event-driven/continuous.
	Schedule string

	// Throttle and Batch configure a Sink's policies; zero means unset. At
	// most one set is typical but they are orthogonal and may co-apply.
	Throttle time.Duration
	Batch    time.Duration

	// mu guards the mutable runtime state below, since a Sink with more than
	// one parent can have concurrent runs in flight.
	mu      sync.Mutex
	lastRun *time.Time

	// queue is the batch accumulator for a Sink with Batch set; nil otherwise.
	// Allocated once at build time and drained by the sink's long-lived batch
	// worker goroutine, started separately from any individual run.
	queue *eventQueue
}

// DAG is the built graph: its source roots plus the full node index.
type DAG struct {
	Roots []*Node
	nodes map[string]*Node
}

// Node looks up a built node by name.
func (d *DAG) Node(name string) (*Node, bool) {
	n, ok := d.nodes[name]
	return n, ok
}

// Walk visits every node reachable from Roots exactly once, in deterministic
// depth-first order (roots in Roots order, children in edge order), calling fn. It stops and
// returns fn's error on the first failure. Mirrors the teacher's
// StreamBuilder.WalkComponents introspection hook.
func (d *DAG) Walk(fn func(*Node) error) error {
	visited := make(map[string]bool, len(d.nodes))
	var visit func(*Node) error
	visit = func(n *Node) error {
		if visited[n.Name] {
			return nil
		}
		visited[n.Name] = true
		if err := fn(n); err != nil {
			return err
		}
		for _, child := range n.Children {
			if err := visit(child); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range d.Roots {
		if err := visit(root); err != nil {
			return err
		}
	}
	return nil
}
