// internal/model/suite.go
// Package: model
package model

import (
	"maps"
	"slices"
	"time"
)

// Suite is the result tree of one benchmark run.
type Suite struct {
	ContextName string
	Date        time.Time
	ConfigPath  string
	UUID        string
	// Name labels the suite when several dumped suites are aggregated.
	Name string

	env           []Information
	benchmarks    []*Benchmark
	resultClasses []ResultClass
}

// NewSuite returns an empty suite.
func NewSuite(contextName string, date time.Time, configPath, uuid string) *Suite {
	return &Suite{ContextName: contextName, Date: date, ConfigPath: configPath, UUID: uuid}
}

// CreateBenchmark appends a benchmark for class.
func (s *Suite) CreateBenchmark(class string) *Benchmark {
	b := &Benchmark{suite: s, Class: class}
	s.benchmarks = append(s.benchmarks, b)
	return b
}

// Benchmarks returns the benchmarks in run order.
func (s *Suite) Benchmarks() []*Benchmark { return slices.Clone(s.benchmarks) }

// Subjects returns every subject of every benchmark.
func (s *Suite) Subjects() []*Subject {
	var out []*Subject
	for _, b := range s.benchmarks {
		out = append(out, b.subjects...)
	}
	return out
}

// Variants returns every variant of the suite in run order.
func (s *Suite) Variants() []*Variant {
	var out []*Variant
	for _, subj := range s.Subjects() {
		out = append(out, subj.variants...)
	}
	return out
}

// AddEnvInformation appends environment information.
func (s *Suite) AddEnvInformation(info Information) {
	s.env = append(s.env, info)
}

// EnvInformations returns the environment information in collection order.
func (s *Suite) EnvInformations() []Information { return slices.Clone(s.env) }

// RegisterResult records the concrete type of r's key unless the key is
// already known; the first occurrence wins.
func (s *Suite) RegisterResult(r Result) {
	s.RegisterResultClass(ResultClass{Key: r.Key(), Class: r.TypeName()})
}

// RegisterResultClass records rc unless its key is already known.
func (s *Suite) RegisterResultClass(rc ResultClass) {
	for _, existing := range s.resultClasses {
		if existing.Key == rc.Key {
			return
		}
	}
	s.resultClasses = append(s.resultClasses, rc)
}

// RegisterResults walks every iteration in run order and registers the
// type of each result it carries. Errored variants are skipped: their
// iterations are never serialized.
func (s *Suite) RegisterResults() {
	for _, v := range s.Variants() {
		if v.HasErrorStack() {
			continue
		}
		for _, it := range v.iterations {
			for _, r := range it.results {
				s.RegisterResult(r)
			}
		}
	}
}

// ResultClasses returns the registered key → type mapping in first
// occurrence order.
func (s *Suite) ResultClasses() []ResultClass { return slices.Clone(s.resultClasses) }

// Prune drops variants that never started and then any subject or
// benchmark left empty.
func (s *Suite) Prune() {
	benchmarks := s.benchmarks[:0]
	for _, b := range s.benchmarks {
		subjects := b.subjects[:0]
		for _, subj := range b.subjects {
			subj.variants = slices.DeleteFunc(subj.variants, func(v *Variant) bool {
				return v.Status == StatusPending
			})
			if len(subj.variants) > 0 {
				subjects = append(subjects, subj)
			}
		}
		b.subjects = subjects
		if len(b.subjects) > 0 {
			benchmarks = append(benchmarks, b)
		}
	}
	s.benchmarks = benchmarks
}

// Summary counts the variants of the suite by outcome.
type Summary struct {
	Subjects   int
	Variants   int
	Iterations int
	Completed  int
	Failed     int
	Errored    int
}

// Summary returns the outcome counts of the suite.
func (s *Suite) Summary() Summary {
	sum := Summary{Subjects: len(s.Subjects())}
	for _, v := range s.Variants() {
		sum.Variants++
		sum.Iterations += len(v.iterations)
		switch v.Status {
		case StatusCompleted:
			sum.Completed++
		case StatusFailed:
			sum.Failed++
		case StatusErrored:
			sum.Errored++
		}
	}
	return sum
}

// Benchmark is a named group of subjects.
type Benchmark struct {
	suite    *Suite
	Class    string
	subjects []*Subject
}

// Suite returns the owning suite.
func (b *Benchmark) Suite() *Suite { return b.suite }

// CreateSubject appends a subject named name.
func (b *Benchmark) CreateSubject(name string) *Subject {
	s := &Subject{benchmark: b, Name: name}
	b.subjects = append(b.subjects, s)
	return s
}

// Subjects returns the subjects in run order.
func (b *Benchmark) Subjects() []*Subject { return slices.Clone(b.subjects) }

// Subject is one benchmarked operation and its execution settings.
type Subject struct {
	benchmark *Benchmark

	Name                string
	Groups              []string
	Sleep               int
	OutputTimeUnit      string
	OutputTimePrecision *int
	OutputMode          string
	RetryThreshold      *float64

	variants []*Variant
}

// Benchmark returns the owning benchmark.
func (s *Subject) Benchmark() *Benchmark { return s.benchmark }

// FullName returns "Class::name".
func (s *Subject) FullName() string {
	if s.benchmark == nil {
		return s.Name
	}
	return s.benchmark.Class + "::" + s.Name
}

// CreateVariant appends a pending variant.
func (s *Subject) CreateVariant(ps ParameterSet, revs, warmup, iterations int) *Variant {
	v := &Variant{
		subject:        s,
		ParameterSet:   ps,
		Revolutions:    revs,
		Warmup:         warmup,
		IterationCount: iterations,
		Status:         StatusPending,
	}
	s.variants = append(s.variants, v)
	return v
}

// Variants returns the variants in run order.
func (s *Subject) Variants() []*Variant { return slices.Clone(s.variants) }

// InGroups reports whether the subject belongs to any of groups.
func (s *Subject) InGroups(groups []string) bool {
	for _, g := range groups {
		if slices.Contains(s.Groups, g) {
			return true
		}
	}
	return false
}

// Information is one named block of environment attributes.
type Information struct {
	Name  string
	attrs map[string]string
}

// NewInformation returns an information block holding attrs.
func NewInformation(name string, attrs map[string]string) Information {
	return Information{Name: name, attrs: maps.Clone(attrs)}
}

// Set stores an attribute.
func (i *Information) Set(key, value string) {
	if i.attrs == nil {
		i.attrs = map[string]string{}
	}
	i.attrs[key] = value
}

// Get returns an attribute.
func (i Information) Get(key string) (string, bool) {
	v, ok := i.attrs[key]
	return v, ok
}

// Keys returns the attribute names sorted.
func (i Information) Keys() []string {
	return slices.Sorted(maps.Keys(i.attrs))
}
