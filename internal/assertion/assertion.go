// internal/assertion/assertion.go
// Package: assertion
package assertion

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/mwiater/benchrunner/internal/stats"
)

// DefaultKind is the asserter used when a configuration names none.
const DefaultKind = "comparator"

// ErrUnknownAsserter is returned when a configuration names an asserter
// that is not registered.
var ErrUnknownAsserter = errors.New("unknown asserter")

// Failure is a violated assertion. Its message is stable and intended for
// end users.
type Failure struct {
	Message string
}

func (f *Failure) Error() string { return f.Message }

// Assertion is a configured check evaluated against a distribution. It
// returns a *Failure when the check is violated and any other error when
// it cannot be evaluated.
type Assertion interface {
	Evaluate(d *stats.Distribution) error
}

// Asserter turns an option map into an Assertion, validating the options
// before any benchmark runs.
type Asserter interface {
	Configure(options map[string]any) (Assertion, error)
}

// Registry maps asserter kind names to asserters. It is built once at
// startup and passed to whatever needs to configure assertions.
type Registry struct {
	asserters map[string]Asserter
}

// NewRegistry returns a registry holding the built-in asserters.
func NewRegistry() *Registry {
	r := &Registry{asserters: map[string]Asserter{}}
	r.Register(DefaultKind, NewComparatorAsserter())
	return r
}

// Register adds or replaces the asserter for kind.
func (r *Registry) Register(kind string, a Asserter) {
	r.asserters[kind] = a
}

// Kinds returns the registered kind names sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.asserters))
	for k := range r.asserters {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Get returns the asserter for kind; an empty kind selects DefaultKind.
func (r *Registry) Get(kind string) (Asserter, error) {
	if kind == "" {
		kind = DefaultKind
	}
	a, ok := r.asserters[kind]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownAsserter, kind, r.Kinds())
	}
	return a, nil
}

// Configure resolves kind and configures an assertion from options.
func (r *Registry) Configure(kind string, options map[string]any) (Assertion, error) {
	a, err := r.Get(kind)
	if err != nil {
		return nil, err
	}
	return a.Configure(options)
}

// EvaluateAll runs every assertion against d and collects all failures.
// Evaluation never stops at the first failure; the returned error is
// non-nil only when an assertion could not be evaluated at all.
func EvaluateAll(d *stats.Distribution, assertions []Assertion) ([]*Failure, error) {
	var (
		failures []*Failure
		errs     []error
	)
	for _, a := range assertions {
		err := a.Evaluate(d)
		if err == nil {
			continue
		}
		var f *Failure
		if errors.As(err, &f) {
			failures = append(failures, f)
			continue
		}
		errs = append(errs, err)
	}
	return slices.Clip(failures), errors.Join(errs...)
}
