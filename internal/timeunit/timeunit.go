// internal/timeunit/timeunit.go
// Package: timeunit
package timeunit

import (
	"fmt"
	"slices"
)

// Supported units.
const (
	Nanoseconds  = "nanoseconds"
	Microseconds = "microseconds"
	Milliseconds = "milliseconds"
	Seconds      = "seconds"
)

// Output modes. Throughput reports operations per unit instead of time
// per operation.
const (
	ModeTime       = "time"
	ModeThroughput = "throughput"
)

// Default unit and mode used when a subject does not set them. Metrics
// arriving from subjects are always in microseconds.
const (
	DefaultUnit = Microseconds
	DefaultMode = ModeTime
)

var (
	units = map[string]float64{
		Nanoseconds:  1e-3,
		Microseconds: 1,
		Milliseconds: 1e3,
		Seconds:      1e6,
	}
	suffixes = map[string]string{
		Nanoseconds:  "ns",
		Microseconds: "μs",
		Milliseconds: "ms",
		Seconds:      "s",
	}
)

// Units returns the supported unit names.
func Units() []string {
	return []string{Nanoseconds, Microseconds, Milliseconds, Seconds}
}

// ValidUnit reports whether unit is supported.
func ValidUnit(unit string) bool {
	_, ok := units[unit]
	return ok
}

// ValidMode reports whether mode is supported.
func ValidMode(mode string) bool {
	return slices.Contains([]string{ModeTime, ModeThroughput}, mode)
}

// Convert converts a time in fromUnit to toUnit. In throughput mode the
// result is the number of operations per toUnit; a zero time yields 0.
func Convert(value float64, fromUnit, toUnit, mode string) (float64, error) {
	from, ok := units[fromUnit]
	if !ok {
		return 0, fmt.Errorf("unknown time unit %q, expected one of %v", fromUnit, Units())
	}
	to, ok := units[toUnit]
	if !ok {
		return 0, fmt.Errorf("unknown time unit %q, expected one of %v", toUnit, Units())
	}
	converted := value * from / to

	switch mode {
	case ModeTime, "":
		return converted, nil
	case ModeThroughput:
		if converted == 0 {
			return 0, nil
		}
		return 1 / converted, nil
	default:
		return 0, fmt.Errorf("unknown output mode %q", mode)
	}
}

// Suffix returns the display suffix for unit in the given mode, e.g. "μs"
// or "ops/μs".
func Suffix(unit, mode string) string {
	s, ok := suffixes[unit]
	if !ok {
		s = unit
	}
	if mode == ModeThroughput {
		return "ops/" + s
	}
	return s
}
