package plugin_test

import (
	"errors"
	"testing"

	"github.com/senoroctopus/octopus/plugin"
	"github.com/senoroctopus/octopus/stream"
)

type mqttParams struct {
	Host   string `default:"localhost"`
	Port   int    `default:"1883"`
	Topic  string
	Stream stream.Stream // reserved, must be skipped
}

func TestDeriveSchema_MapsSimpleTypesAndDefaults(t *testing.T) {
	schema, err := plugin.DeriveSchema[mqttParams]()
	if err != nil {
		t.Fatalf("DeriveSchema failed: %v", err)
	}

	if _, ok := schema["stream"]; ok {
		t.Fatal("reserved stream field leaked into schema")
	}

	host, ok := schema["host"]
	if !ok {
		t.Fatal("expected host field in schema")
	}
	if host.Type != "string" || host.Required || host.Default != "localhost" {
		t.Fatalf("unexpected host field: %+v", host)
	}

	port, ok := schema["port"]
	if !ok {
		t.Fatal("expected port field in schema")
	}
	if port.Type != "integer" || port.Required || port.Default != int64(1883) {
		t.Fatalf("unexpected port field: %+v", port)
	}

	topic, ok := schema["topic"]
	if !ok {
		t.Fatal("expected topic field in schema")
	}
	if topic.Type != "string" || !topic.Required {
		t.Fatalf("expected topic to be a required string, got %+v", topic)
	}
}

type unsupportedParams struct {
	Tags []string
}

func TestDeriveSchema_UnsupportedTypeFails(t *testing.T) {
	_, err := plugin.DeriveSchema[unsupportedParams]()
	if !errors.Is(err, plugin.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestDeriveSchema_RequiresStructType(t *testing.T) {
	_, err := plugin.DeriveSchema[string]()
	if err == nil {
		t.Fatal("expected error deriving schema from a non-struct type")
	}
}
