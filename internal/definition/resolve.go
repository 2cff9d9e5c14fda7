// internal/definition/resolve.go
// Package: definition
package definition

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/mwiater/benchrunner/internal/assertion"
	"github.com/mwiater/benchrunner/internal/hierarchy"
	"github.com/mwiater/benchrunner/internal/model"
	"github.com/mwiater/benchrunner/internal/timeunit"
)

// Defaults applied to subjects that leave a setting unset.
const (
	DefaultRevs       = 1
	DefaultIterations = 1
)

// Benchmark is a resolved definition file ready to run.
type Benchmark struct {
	Class     string
	Command   []string
	Hierarchy *hierarchy.Hierarchy
	Path      string
	Subjects  []*Subject
}

// Subject is a resolved subject. Variants are the cross product of
// ParameterSets and Revs.
type Subject struct {
	Name string
	// Class is the most derived type of the hierarchy, sent to the
	// subject command as the entry point.
	Class               string
	Revs                []int
	Iterations          int
	Warmup              int
	Sleep               time.Duration
	Groups              []string
	Before              []string
	After               []string
	RetryThreshold      *float64
	OutputTimeUnit      string
	OutputTimePrecision *int
	OutputMode          string
	Timeout             time.Duration
	ParameterSets       []model.ParameterSet
	Assertions          []assertion.Assertion
}

// VariantCount is the number of variants the subject expands to.
func (s *Subject) VariantCount() int {
	return len(s.ParameterSets) * len(s.Revs)
}

// Options narrow and override what the definitions describe.
type Options struct {
	// Filters are regular expressions matched against "Class::subject".
	Filters []string
	// Groups keeps only subjects in at least one of the groups.
	Groups []string
	// Revs replaces every subject's revolutions.
	Revs []int
	// Iterations replaces every subject's iteration count when > 0.
	Iterations int
	// Warmup replaces every subject's warmup count when set.
	Warmup *int
	// Parameters replaces every subject's parameter sets with one set.
	Parameters map[string]any
	// Assertions are added to every subject.
	Assertions []AssertionDef
	// Registry configures assertions; required when any are declared.
	Registry *assertion.Registry
}

// Resolve validates the files against their hierarchies and expands them
// into runnable benchmarks. Nothing runs when any definition is invalid.
// Benchmarks left without subjects by the filters are dropped.
func Resolve(files []*File, opts Options) ([]*Benchmark, error) {
	filters := make([]*regexp.Regexp, 0, len(opts.Filters))
	for _, f := range opts.Filters {
		re, err := regexp.Compile(f)
		if err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", f, err)
		}
		filters = append(filters, re)
	}
	registry := opts.Registry
	if registry == nil {
		registry = assertion.NewRegistry()
	}

	var benchmarks []*Benchmark
	for _, f := range files {
		h := hierarchy.New()
		for _, td := range f.Hierarchy {
			h.AddType(hierarchy.NewType(td.Name, td.Methods...))
		}
		top, err := h.Top()
		if err != nil {
			return nil, fmt.Errorf("benchmark %s: %w", f.Class, err)
		}

		b := &Benchmark{Class: f.Class, Command: f.Command, Hierarchy: h, Path: f.Path}
		for _, sd := range f.Subjects {
			full := f.Class + "::" + sd.Name
			if !matchesFilters(filters, full) || !inGroups(opts.Groups, sd.Groups) {
				continue
			}
			if err := checkMethods(h, sd); err != nil {
				return nil, fmt.Errorf("subject %s: %w", full, err)
			}
			s, err := resolveSubject(sd, top.Name, opts, registry)
			if err != nil {
				return nil, fmt.Errorf("subject %s: %w", full, err)
			}
			b.Subjects = append(b.Subjects, s)
		}
		if len(b.Subjects) > 0 {
			benchmarks = append(benchmarks, b)
		}
	}
	return benchmarks, nil
}

func checkMethods(h *hierarchy.Hierarchy, sd SubjectDef) error {
	methods := append([]string{sd.Name}, sd.Before...)
	methods = append(methods, sd.After...)
	for _, m := range methods {
		if !h.HasMethod(m) {
			return fmt.Errorf("method %q is not declared in the type hierarchy", m)
		}
	}
	return nil
}

func resolveSubject(sd SubjectDef, class string, opts Options, registry *assertion.Registry) (*Subject, error) {
	s := &Subject{
		Name:                sd.Name,
		Class:               class,
		Revs:                sd.Revs,
		Iterations:          sd.Iterations,
		Warmup:              sd.Warmup,
		Sleep:               time.Duration(sd.Sleep) * time.Microsecond,
		Groups:              sd.Groups,
		Before:              sd.Before,
		After:               sd.After,
		RetryThreshold:      sd.RetryThreshold,
		OutputTimeUnit:      sd.OutputTimeUnit,
		OutputTimePrecision: sd.OutputTimePrecision,
		OutputMode:          sd.OutputMode,
		Timeout:             sd.Timeout,
	}
	if len(opts.Revs) > 0 {
		s.Revs = opts.Revs
	}
	if len(s.Revs) == 0 {
		s.Revs = []int{DefaultRevs}
	}
	for _, r := range s.Revs {
		if r <= 0 {
			return nil, fmt.Errorf("revs must be positive, got %d", r)
		}
	}
	if opts.Iterations > 0 {
		s.Iterations = opts.Iterations
	}
	if s.Iterations == 0 {
		s.Iterations = DefaultIterations
	}
	if opts.Warmup != nil {
		s.Warmup = *opts.Warmup
	}
	if s.OutputTimeUnit == "" {
		s.OutputTimeUnit = timeunit.DefaultUnit
	}
	if s.OutputMode == "" {
		s.OutputMode = timeunit.DefaultMode
	}

	params := sd.Params
	if opts.Parameters != nil {
		params = []map[string]any{opts.Parameters}
	}
	if len(params) == 0 {
		params = []map[string]any{{}}
	}
	for i, p := range params {
		ps, err := model.NewParameterSet(strconv.Itoa(i), p)
		if err != nil {
			return nil, err
		}
		s.ParameterSets = append(s.ParameterSets, ps)
	}

	for _, ad := range append(append([]AssertionDef{}, sd.Assert...), opts.Assertions...) {
		a, err := registry.Configure(ad.Kind, ad.Options)
		if err != nil {
			return nil, err
		}
		s.Assertions = append(s.Assertions, a)
	}
	return s, nil
}

func matchesFilters(filters []*regexp.Regexp, name string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, re := range filters {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func inGroups(want, have []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}
