package graph

import (
	"fmt"

	"github.com/senoroctopus/octopus/plugin"
)

// reservedKeys are section keys consumed by the graph builder itself and
// never passed through to plugin config validation.
var reservedKeys = map[string]bool{
	"plugin":   true,
	"flow":     true,
	"schedule": true,
	"throttle": true,
	"batch":    true,
}

// validateConfig checks raw (a section's parameter sub-map, with the
// reserved keys already stripped) against schema: unknown keys are
// rejected, missing required keys are rejected, defaults are filled in for
// keys the caller omitted, and values are type-coerced to the schema's
// declared type. Returns the validated, coerced, defaults-filled config.
func validateConfig(nodeName string, schema plugin.Schema, raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(schema))

	for key := range raw {
		if _, known := schema[key]; !known {
			return nil, fmt.Errorf("%w: node %q: unknown parameter %q", ErrInvalidConfiguration, nodeName, key)
		}
	}

	for name, field := range schema {
		value, present := raw[name]
		if !present {
			if field.Required {
				return nil, fmt.Errorf("%w: node %q: missing required parameter %q", ErrInvalidConfiguration, nodeName, name)
			}
			out[name] = field.Default
			continue
		}

		coerced, err := coerce(field.Type, value)
		if err != nil {
			return nil, fmt.Errorf("%w: node %q: parameter %q: %v", ErrInvalidConfiguration, nodeName, name, err)
		}
		out[name] = coerced
	}

	return out, nil
}

// coerce converts value to fieldType ("string" or "integer"), accepting the
// exact Go type already matching as well as the loose numeric/string shapes
// a YAML decoder commonly produces (int, int64, float64).
func coerce(fieldType string, value any) (any, error) {
	switch fieldType {
	case "string":
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %T", value)
		}
		return s, nil
	case "integer":
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		case float64:
			if v != float64(int64(v)) {
				return nil, fmt.Errorf("expected an integer, got non-integral number %v", v)
			}
			return int64(v), nil
		default:
			return nil, fmt.Errorf("expected an integer, got %T", value)
		}
	default:
		return nil, fmt.Errorf("unsupported schema type %q", fieldType)
	}
}
