// internal/model/iteration.go
// Package: model
package model

import "slices"

// Iteration is one measured execution cycle of a variant.
type Iteration struct {
	Index   int
	variant *Variant
	results []Result
}

// Variant returns the owning variant.
func (i *Iteration) Variant() *Variant { return i.variant }

// SetResult stores r, replacing any result of the same kind.
func (i *Iteration) SetResult(r Result) {
	for n, existing := range i.results {
		if existing.Key() == r.Key() {
			i.results[n] = r
			return
		}
	}
	i.results = append(i.results, r)
}

// Result returns the result of the given kind.
func (i *Iteration) Result(key string) (Result, bool) {
	for _, r := range i.results {
		if r.Key() == key {
			return r, true
		}
	}
	return nil, false
}

// Results returns the results in the order they were set.
func (i *Iteration) Results() []Result { return slices.Clone(i.results) }

// Time returns the iteration's time result.
func (i *Iteration) Time() (TimeResult, bool) {
	r, ok := i.Result(KindTime)
	if !ok {
		return TimeResult{}, false
	}
	tr, ok := r.(TimeResult)
	return tr, ok
}
