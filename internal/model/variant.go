// internal/model/variant.go
// Package: model
package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/mwiater/benchrunner/internal/stats"
)

// ErrVariantState is returned when a variant is asked to hold both an
// error stack and assertion failures.
var ErrVariantState = errors.New("a variant cannot hold both errors and failures")

// Status is the position of a variant in its execution lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusWarmup     Status = "warmup"
	StatusMeasuring  Status = "measuring"
	StatusRetryCheck Status = "retry-check"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusErrored    Status = "errored"
)

// Terminal reports whether s is one of the final states.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusErrored
}

// Variant is one concrete execution unit of a subject: a parameter set at
// a revolutions count.
type Variant struct {
	subject *Subject

	ParameterSet   ParameterSet
	Revolutions    int
	Warmup         int
	IterationCount int
	Status         Status
	Retries        int

	iterations []*Iteration
	stats      map[string]float64
	errorStack ErrorStack
	failures   []Failure
}

// Subject returns the owning subject.
func (v *Variant) Subject() *Subject { return v.subject }

// CreateIteration appends a new iteration.
func (v *Variant) CreateIteration() *Iteration {
	it := &Iteration{Index: len(v.iterations), variant: v}
	v.iterations = append(v.iterations, it)
	return it
}

// Iterations returns the iterations in run order.
func (v *Variant) Iterations() []*Iteration { return slices.Clone(v.iterations) }

// ResetIterations discards all measured iterations and the stats derived
// from them.
func (v *Variant) ResetIterations() {
	v.iterations = nil
	v.stats = nil
}

// RevTimes returns the time per revolution of every iteration.
func (v *Variant) RevTimes() ([]float64, error) {
	times := make([]float64, 0, len(v.iterations))
	for _, it := range v.iterations {
		tr, ok := it.Time()
		if !ok {
			return nil, fmt.Errorf("iteration %d has no %q result", it.Index, KindTime)
		}
		times = append(times, tr.RevTime(v.Revolutions))
	}
	return times, nil
}

// Distribution computes the distribution of revolution times over the
// current iterations.
func (v *Variant) Distribution() (*stats.Distribution, error) {
	times, err := v.RevTimes()
	if err != nil {
		return nil, err
	}
	return stats.NewDistribution(times)
}

// ComputeStats snapshots the distribution stats and attaches a computed
// result (z-value and deviation) to every iteration.
func (v *Variant) ComputeStats() error {
	d, err := v.Distribution()
	if err != nil {
		return err
	}
	v.stats = d.Stats()

	mean, stdev := d.Mean(), d.Stdev()
	for i, t := range d.Samples() {
		var comp ComputedResult
		if stdev != 0 {
			comp.ZValue = (t - mean) / stdev
		}
		if mean != 0 {
			comp.Deviation = 100 / mean * (t - mean)
		}
		v.iterations[i].SetResult(comp)
	}
	return nil
}

// Stats returns the stats snapshot.
func (v *Variant) Stats() map[string]float64 { return maps.Clone(v.stats) }

// SetStats replaces the stats snapshot, used when decoding suites.
func (v *Variant) SetStats(s map[string]float64) { v.stats = maps.Clone(s) }

// HasStats reports whether stats were computed.
func (v *Variant) HasStats() bool { return len(v.stats) > 0 }

// SetErrorStack records an execution failure and marks the variant errored.
func (v *Variant) SetErrorStack(stack ErrorStack) error {
	if len(v.failures) > 0 {
		return ErrVariantState
	}
	v.errorStack = slices.Clone(stack)
	v.Status = StatusErrored
	return nil
}

// ErrorStack returns the captured errors.
func (v *Variant) ErrorStack() ErrorStack { return slices.Clone(v.errorStack) }

// HasErrorStack reports whether the subject's execution failed.
func (v *Variant) HasErrorStack() bool { return len(v.errorStack) > 0 }

// SetFailures records assertion failures and marks the variant failed.
// An empty list is a no-op.
func (v *Variant) SetFailures(failures []Failure) error {
	if len(failures) == 0 {
		return nil
	}
	if len(v.errorStack) > 0 {
		return ErrVariantState
	}
	v.failures = slices.Clone(failures)
	v.Status = StatusFailed
	return nil
}

// Failures returns the assertion failures.
func (v *Variant) Failures() []Failure { return slices.Clone(v.failures) }

// HasFailed reports whether any assertion failed.
func (v *Variant) HasFailed() bool { return len(v.failures) > 0 }

// Name renders the variant for logs, e.g. "HashBench::benchMd5 {size=10} revs=100".
func (v *Variant) Name() string {
	name := fmt.Sprintf("revs=%d", v.Revolutions)
	if v.ParameterSet.Len() > 0 {
		name = v.ParameterSet.String() + " " + name
	}
	if v.subject != nil {
		name = v.subject.FullName() + " " + name
	}
	return name
}
