// Package event defines the uniform record that flows along every edge of a
// Señor Octopus graph. Sources produce Events, filters transform them, and
// sinks consume them; the type is intentionally the smallest thing that can
// carry an arbitrary payload with a name and a timestamp.
package event

import (
	"strings"
	"time"
)

// Event is a single {timestamp, name, value} record. Value is opaque to the
// core runtime — plugins agree on its shape between themselves.
type Event struct {
	// Timestamp is always expressed in UTC. Producers that observe wall-clock
	// time in another zone must convert it before constructing an Event.
	Timestamp time.Time

	// Name is a non-empty dotted path, e.g. "sensor.kitchen.temperature".
	Name string

	// Value is the opaque payload. The core never inspects it.
	Value any
}

// New builds an Event with its Timestamp normalized to UTC.
func New(name string, value any) Event {
	return Event{Timestamp: time.Now().UTC(), Name: name, Value: value}
}

// Valid reports whether the event satisfies the data model's invariants: a
// UTC timestamp and a non-empty dotted name.
func (e Event) Valid() bool {
	if e.Name == "" {
		return false
	}
	if e.Timestamp.Location() != time.UTC {
		return false
	}
	return true
}

// Namespace returns the leading dotted segment of the event's name, e.g.
// "sensor" for "sensor.kitchen.temperature". Returns the full name if it
// contains no dot.
func (e Event) Namespace() string {
	if idx := strings.IndexByte(e.Name, '.'); idx >= 0 {
		return e.Name[:idx]
	}
	return e.Name
}
