// Package config loads a pipeline's YAML configuration document into the
// generic map shape graph.Build consumes. It is deliberately thin: schema
// validation, environment-variable interpolation, and CLI-flag overlays are
// the graph builder's and cmd/octopus's job, not this package's — config
// only turns bytes into nested maps.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyDocument is returned by Load/Parse when the YAML document contains
// no top-level node sections.
var ErrEmptyDocument = errors.New("config: document has no node sections")

// Load reads and parses the YAML pipeline document at path.
func Load(path string) (map[string]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML pipeline document into the map[string]map[string]any
// shape graph.Build expects: one entry per node name, each holding that
// node's raw section (plugin, flow, schedule, throttle, batch, and
// plugin-specific parameters) as a string-keyed map.
func Parse(data []byte) (map[string]map[string]any, error) {
	var raw map[string]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parsing document: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyDocument
	}
	return raw, nil
}
