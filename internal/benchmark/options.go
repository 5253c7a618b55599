package benchmark

import (
	"fmt"
	"strings"
	"time"
)

// Mode is a reported measurement mode.
type Mode string

const (
	// AverageTime reports time per operation per worker.
	AverageTime Mode = "avgt"
	// Throughput reports operations per time unit across all workers.
	Throughput Mode = "thrpt"
)

// ParseMode accepts "avgt" or "thrpt".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case AverageTime, Throughput:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want avgt or thrpt)", s)
	}
}

// timeUnits lists the accepted output units.
var timeUnits = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
}

// ParseTimeUnit accepts ns, us, ms or s.
func ParseTimeUnit(s string) (time.Duration, error) {
	u, ok := timeUnits[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown time unit %q (want ns, us, ms or s)", s)
	}
	return u, nil
}

// UnitName returns the short name of a unit accepted by ParseTimeUnit.
func UnitName(u time.Duration) string {
	for name, d := range timeUnits {
		if d == u {
			return name
		}
	}
	return u.String()
}

// Options is the runner metadata: how long and how often to measure.
type Options struct {
	Warmup      int           `json:"warmup"`      // discarded iterations per fork
	Measurement int           `json:"measurement"` // recorded iterations per fork
	Forks       int           `json:"forks"`       // 0 runs in-process
	Iteration   time.Duration `json:"iteration"`
	Threads     int           `json:"threads"` // workers for max-thread operations; 0 = GOMAXPROCS
	Modes       []Mode        `json:"modes"`
	TimeUnit    time.Duration `json:"timeUnit"`
}

// DefaultOptions returns 5 warmup and 5 measured 1s iterations in 3 forks,
// reported in both modes in microseconds.
func DefaultOptions() Options {
	return Options{
		Warmup:      5,
		Measurement: 5,
		Forks:       3,
		Iteration:   time.Second,
		Modes:       []Mode{AverageTime, Throughput},
		TimeUnit:    time.Microsecond,
	}
}

// Validate checks the counts and durations are usable.
func (o Options) Validate() error {
	switch {
	case o.Warmup < 0:
		return fmt.Errorf("warmup iterations must be >= 0, got %d", o.Warmup)
	case o.Measurement < 1:
		return fmt.Errorf("measurement iterations must be >= 1, got %d", o.Measurement)
	case o.Forks < 0:
		return fmt.Errorf("forks must be >= 0, got %d", o.Forks)
	case o.Iteration <= 0:
		return fmt.Errorf("iteration time must be positive, got %s", o.Iteration)
	case o.TimeUnit <= 0:
		return fmt.Errorf("time unit must be positive, got %s", o.TimeUnit)
	case len(o.Modes) == 0:
		return fmt.Errorf("at least one mode is required")
	}
	return nil
}
