// internal/harness/types.go
// Package: harness
package harness

import (
	"time"

	"github.com/mwiater/benchrunner/internal/env"
)

// Defaults applied to a RunnerContext that leaves them unset.
const (
	DefaultRetryLimit = 10
	DefaultTimeout    = 60 * time.Second
)

// RunnerContext carries the settings of one run.
type RunnerContext struct {
	// ContextName labels the suite, e.g. "baseline".
	ContextName string
	// ConfigPath is recorded in the suite for reference.
	ConfigPath string
	// StopOnError stops scheduling variants after the first failed or
	// errored one. Running variants are never interrupted.
	StopOnError bool
	// Parallel is the maximum number of variants running at once.
	// Values below 2 run sequentially.
	Parallel int
	// RetryLimit bounds re-measurements of a variant whose rstdev exceeds
	// its retry threshold.
	RetryLimit int
	// Timeout bounds every iteration unless the subject sets its own.
	Timeout time.Duration
	// EnvProviders are queried once at the start of the run.
	EnvProviders []env.Provider
}

func (rc RunnerContext) withDefaults() RunnerContext {
	if rc.RetryLimit <= 0 {
		rc.RetryLimit = DefaultRetryLimit
	}
	if rc.Timeout <= 0 {
		rc.Timeout = DefaultTimeout
	}
	if rc.Parallel < 1 {
		rc.Parallel = 1
	}
	return rc
}
