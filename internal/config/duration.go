package config

import (
	"fmt"
	"strings"
	"time"
)

// Duration fields are Go duration strings ("10s", "10m"). An empty field
// means "use the default for that setting"; negative values are rejected.

// PracticumTimeout returns the per-request bound for the status API.
func (c *Config) PracticumTimeout() (time.Duration, error) {
	return durationField("practicum.timeout", c.Practicum.Timeout, 10*time.Second)
}

// SQLiteBusyTimeout returns the journal's busy_timeout pragma value.
// Zero leaves the driver default in place.
func (s *StorageConfig) SQLiteBusyTimeout() (time.Duration, error) {
	if s == nil {
		return 0, nil
	}
	return durationField("storage.busy_timeout", s.BusyTimeout, 0)
}

func durationField(field, raw string, def time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration: %w", field, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %q", field, raw)
	}
	return d, nil
}
