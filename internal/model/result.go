// internal/model/result.go
// Package: model
package model

import (
	"fmt"
	"maps"
	"slices"
)

// Result kinds produced by the runner and the subject protocol.
const (
	KindTime     = "time"
	KindMemory   = "mem"
	KindComputed = "comp"
)

// Result is one typed metric payload of an iteration.
type Result interface {
	// Key is the result kind, e.g. "time".
	Key() string
	// TypeName identifies the concrete result type in serialized suites.
	TypeName() string
	// Metrics returns the named values of the result.
	Metrics() map[string]float64
}

// TimeResult holds the net time, in microseconds, spent on all
// revolutions of an iteration.
type TimeResult struct {
	Net float64
}

func (TimeResult) Key() string      { return KindTime }
func (TimeResult) TypeName() string { return "TimeResult" }
func (r TimeResult) Metrics() map[string]float64 {
	return map[string]float64{"net": r.Net}
}

// RevTime is the time taken by a single revolution.
func (r TimeResult) RevTime(revs int) float64 {
	if revs <= 0 {
		return r.Net
	}
	return r.Net / float64(revs)
}

// MemoryResult holds memory figures in bytes as reported by the subject.
type MemoryResult struct {
	Peak  float64
	Real  float64
	Final float64
}

func (MemoryResult) Key() string      { return KindMemory }
func (MemoryResult) TypeName() string { return "MemoryResult" }
func (r MemoryResult) Metrics() map[string]float64 {
	return map[string]float64{"peak": r.Peak, "real": r.Real, "final": r.Final}
}

// ComputedResult is attached to every iteration once the variant stats
// are known: the z-value of the iteration's revolution time and its
// deviation from the mean in percent.
type ComputedResult struct {
	ZValue    float64
	Deviation float64
}

func (ComputedResult) Key() string      { return KindComputed }
func (ComputedResult) TypeName() string { return "ComputedResult" }
func (r ComputedResult) Metrics() map[string]float64 {
	return map[string]float64{"z_value": r.ZValue, "deviation": r.Deviation}
}

// MetricsResult carries any other result kind a subject reports.
type MetricsResult struct {
	Kind   string
	Values map[string]float64
}

func (r MetricsResult) Key() string                 { return r.Kind }
func (MetricsResult) TypeName() string              { return "MetricsResult" }
func (r MetricsResult) Metrics() map[string]float64 { return maps.Clone(r.Values) }

type resultFactory func(key string, metrics map[string]float64) Result

var resultTypes = map[string]resultFactory{
	"TimeResult": func(_ string, m map[string]float64) Result {
		return TimeResult{Net: m["net"]}
	},
	"MemoryResult": func(_ string, m map[string]float64) Result {
		return MemoryResult{Peak: m["peak"], Real: m["real"], Final: m["final"]}
	},
	"ComputedResult": func(_ string, m map[string]float64) Result {
		return ComputedResult{ZValue: m["z_value"], Deviation: m["deviation"]}
	},
	"MetricsResult": func(key string, m map[string]float64) Result {
		return MetricsResult{Kind: key, Values: maps.Clone(m)}
	},
}

// NewResult rebuilds a result of the named concrete type.
func NewResult(typeName, key string, metrics map[string]float64) (Result, error) {
	f, ok := resultTypes[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown result type %q for key %q", typeName, key)
	}
	return f(key, metrics), nil
}

// ResultFromMetrics maps a kind reported by a subject onto its concrete
// result type.
func ResultFromMetrics(key string, metrics map[string]float64) Result {
	switch key {
	case KindTime:
		return TimeResult{Net: metrics["net"]}
	case KindMemory:
		return MemoryResult{Peak: metrics["peak"], Real: metrics["real"], Final: metrics["final"]}
	case KindComputed:
		return ComputedResult{ZValue: metrics["z_value"], Deviation: metrics["deviation"]}
	}
	return MetricsResult{Kind: key, Values: maps.Clone(metrics)}
}

// ResultClass records which concrete type a result key decodes to.
type ResultClass struct {
	Key   string
	Class string
}

// SortedMetricNames returns the metric names of r in sorted order.
func SortedMetricNames(r Result) []string {
	return slices.Sorted(maps.Keys(r.Metrics()))
}
