// Package plugin defines the three callable shapes a Señor Octopus plugin
// can implement (source, filter, sink), the registry that resolves a plugin
// identifier to one of them, and the reflection-based schema derivation used
// when a plugin does not declare its configuration schema explicitly.
package plugin

import (
	"context"
	"errors"
	"fmt"

	"github.com/senoroctopus/octopus/stream"
)

// Role identifies which of the three callable shapes a plugin implements.
type Role string

const (
	RoleSource Role = "source"
	RoleFilter Role = "filter"
	RoleSink   Role = "sink"
)

// SourceCallable produces a fresh Stream from a validated configuration. It
// has no upstream; invoked once per Source.run.
type SourceCallable func(ctx context.Context, config map[string]any) (stream.Stream, error)

// FilterCallable derives a new Stream from an upstream one.
type FilterCallable func(ctx context.Context, upstream stream.Stream, config map[string]any) (stream.Stream, error)

// SinkCallable drains an upstream Stream as a terminal coroutine. It returns
// when the upstream ends, the context is cancelled, or it fails.
type SinkCallable func(ctx context.Context, upstream stream.Stream, config map[string]any) error

// ErrUnknownPlugin is returned by Resolve when no plugin is registered under
// the requested identifier.
var ErrUnknownPlugin = errors.New("plugin: unknown plugin")

// ErrUnsupportedType is returned by DeriveSchema when a plugin's declared
// parameter has a Go type that doesn't map onto the schema's supported
// simple types (string, integer).
var ErrUnsupportedType = errors.New("plugin: unsupported parameter type")

// Plugin is one registered entry: an identifier, the role it fulfils, its
// configuration schema, and exactly one of the three callables, matching its
// Role.
type Plugin struct {
	ID     string
	Role   Role
	Schema Schema

	Source SourceCallable
	Filter FilterCallable
	Sink   SinkCallable
}

// validate checks that the callable matching Role is set; the other two
// callables are not inspected. Called by
// Registry.Register so a misconfigured entry fails at startup rather than at
// first invocation.
func (p Plugin) validate() error {
	switch p.Role {
	case RoleSource:
		if p.Source == nil {
			return fmt.Errorf("plugin %q: role source requires a SourceCallable", p.ID)
		}
	case RoleFilter:
		if p.Filter == nil {
			return fmt.Errorf("plugin %q: role filter requires a FilterCallable", p.ID)
		}
	case RoleSink:
		if p.Sink == nil {
			return fmt.Errorf("plugin %q: role sink requires a SinkCallable", p.ID)
		}
	default:
		return fmt.Errorf("plugin %q: unknown role %q", p.ID, p.Role)
	}
	return nil
}
