// internal/stats/distribution.go
// Package: stats
package stats

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrEmptyDistribution is returned when a distribution is requested over
// zero samples.
var ErrEmptyDistribution = errors.New("cannot compute a distribution over zero samples")

// ErrUnknownStat is returned by Stat for names not listed in StatNames.
var ErrUnknownStat = errors.New("unknown stat")

// Stat names exposed by Distribution.Stats.
const (
	StatMax      = "max"
	StatMean     = "mean"
	StatMin      = "min"
	StatP50      = "p50"
	StatP95      = "p95"
	StatRstdev   = "rstdev"
	StatStdev    = "stdev"
	StatSum      = "sum"
	StatVariance = "variance"
)

var statNames = []string{
	StatMax, StatMean, StatMin, StatP50, StatP95,
	StatRstdev, StatStdev, StatSum, StatVariance,
}

// StatNames returns the names of all stats in sorted order.
func StatNames() []string {
	return slices.Clone(statNames)
}

// IsStat reports whether name is a known stat.
func IsStat(name string) bool {
	return slices.Contains(statNames, name)
}

// Distribution summarizes a non-empty bag of samples. All aggregates are
// computed once at construction.
type Distribution struct {
	samples  []float64
	sorted   []float64
	sum      float64
	mean     float64
	variance float64
}

// NewDistribution computes the distribution of samples. The slice is
// copied.
func NewDistribution(samples []float64) (*Distribution, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyDistribution
	}
	d := &Distribution{
		samples: slices.Clone(samples),
		sorted:  slices.Clone(samples),
	}
	slices.Sort(d.sorted)

	n := float64(len(samples))
	for _, v := range samples {
		d.sum += v
	}
	d.mean = d.sum / n

	var varsum float64
	for _, v := range samples {
		diff := v - d.mean
		varsum += diff * diff
	}
	d.variance = varsum / n
	return d, nil
}

// Count returns the number of samples.
func (d *Distribution) Count() int { return len(d.samples) }

// Samples returns a copy of the samples in their original order.
func (d *Distribution) Samples() []float64 { return slices.Clone(d.samples) }

func (d *Distribution) Sum() float64 { return d.sum }

func (d *Distribution) Mean() float64 { return d.mean }

// Variance is the population variance.
func (d *Distribution) Variance() float64 { return d.variance }

func (d *Distribution) Stdev() float64 { return math.Sqrt(d.variance) }

// Rstdev is the standard deviation as a percentage of the mean. It is 0
// when the mean is 0.
func (d *Distribution) Rstdev() float64 {
	if d.mean == 0 {
		return 0
	}
	return d.Stdev() / math.Abs(d.mean) * 100
}

func (d *Distribution) Min() float64 { return d.sorted[0] }

func (d *Distribution) Max() float64 { return d.sorted[len(d.sorted)-1] }

// Percentile returns the p-th percentile (0..100) by linear interpolation
// between the closest ranks of the sorted samples.
func (d *Distribution) Percentile(p float64) float64 {
	if p <= 0 {
		return d.Min()
	}
	if p >= 100 {
		return d.Max()
	}
	pos := p / 100 * float64(len(d.sorted)-1)
	l := int(math.Floor(pos))
	r := int(math.Ceil(pos))
	if l == r {
		return d.sorted[l]
	}
	frac := pos - float64(l)
	return d.sorted[l]*(1-frac) + d.sorted[r]*frac
}

// Stats returns every named stat.
func (d *Distribution) Stats() map[string]float64 {
	return map[string]float64{
		StatMax:      d.Max(),
		StatMean:     d.Mean(),
		StatMin:      d.Min(),
		StatP50:      d.Percentile(50),
		StatP95:      d.Percentile(95),
		StatRstdev:   d.Rstdev(),
		StatStdev:    d.Stdev(),
		StatSum:      d.Sum(),
		StatVariance: d.Variance(),
	}
}

// Stat returns a single named stat.
func (d *Distribution) Stat(name string) (float64, error) {
	v, ok := d.Stats()[name]
	if !ok {
		return 0, fmt.Errorf("%w %q (available: %v)", ErrUnknownStat, name, statNames)
	}
	return v, nil
}
