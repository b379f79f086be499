package graph

import (
	"fmt"
	"time"
)

// parseDuration accepts either a Go duration string ("2m", "90s") or a bare
// number of seconds (as YAML commonly decodes an unquoted scalar: int or
// float64), for the throttle/batch section keys.
func parseDuration(value any) (time.Duration, error) {
	switch v := value.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", v, err)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("expected a duration string or number of seconds, got %T", value)
	}
}
