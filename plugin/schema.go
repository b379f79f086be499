package plugin

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/senoroctopus/octopus/internal/jsonschema"
)

// Field describes one configuration parameter: its simple type, whether the
// graph builder must reject a config missing it, its default when optional,
// and human-facing metadata.
type Field struct {
	Type        string // "string" or "integer"
	Required    bool   // true iff no Default was declared
	Default     any
	Title       string
	Description string
}

// Schema maps a plugin's parameter name to its Field. It is either declared
// explicitly by a plugin (built as a literal Schema value) or derived by
// DeriveSchema from a Go struct describing the plugin's parameters.
type Schema map[string]Field

// reservedStreamField is the parameter name DeriveSchema skips: a plugin's
// parameter struct may embed the upstream Stream as a field (to keep one
// struct describing a filter or sink's full invocation), and it is not a
// configuration key.
const reservedStreamField = "stream"

// DeriveSchema builds a Schema from T's exported fields by reflection, for
// plugins that don't declare one explicitly. Each field maps to a schema
// entry named after the field (lower-cased); a field literally named Stream
// (case-insensitively) is skipped as the reserved upstream-stream parameter,
// and a field whose json tag renames it (or is "-") has no matching schema
// property and is skipped too. A field whose Go type isn't a string or an integer kind fails with
// ErrUnsupportedType. A field is required unless it carries a
// `default:"..."` struct tag, in which case that tag's value (parsed as the
// field's type) becomes its Default.
func DeriveSchema[T any]() (Schema, error) {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("plugin: DeriveSchema requires a struct type, got %s", t.Kind())
	}

	raw := jsonschema.GenerateJSONSchema[T]()

	schema := make(Schema)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if strings.EqualFold(field.Name, reservedStreamField) {
			continue
		}

		prop := raw.Properties[field.Name]
		if prop == nil {
			continue
		}
		if prop.Type != "string" && prop.Type != "integer" {
			return nil, fmt.Errorf("%w: parameter %q has type %q", ErrUnsupportedType, field.Name, prop.Type)
		}

		def, hasDefault, err := parseDefaultTag(field)
		if err != nil {
			return nil, err
		}

		schema[strings.ToLower(field.Name)] = Field{
			Type:        prop.Type,
			Required:    !hasDefault,
			Default:     def,
			Title:       field.Name,
			Description: field.Tag.Get("description"),
		}
	}
	return schema, nil
}

// parseDefaultTag reads the `default:"..."` struct tag, if present, and
// parses it as field's declared type (string or integer).
func parseDefaultTag(field reflect.StructField) (any, bool, error) {
	raw, ok := field.Tag.Lookup("default")
	if !ok {
		return nil, false, nil
	}

	switch field.Type.Kind() {
	case reflect.String:
		return raw, true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var v int64
		if _, err := fmt.Sscanf(raw, "%d", &v); err != nil {
			return nil, false, fmt.Errorf("plugin: parameter %q: invalid default %q: %w", field.Name, raw, err)
		}
		return v, true, nil
	default:
		return nil, false, fmt.Errorf("%w: parameter %q has type %q", ErrUnsupportedType, field.Name, field.Type.Kind())
	}
}
