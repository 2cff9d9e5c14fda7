package assertion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/benchrunner/internal/stats"
)

func distribution(t *testing.T, samples ...float64) *stats.Distribution {
	t.Helper()
	d, err := stats.NewDistribution(samples)
	require.NoError(t, err)
	return d
}

func assertWith(t *testing.T, d *stats.Distribution, options map[string]any) error {
	t.Helper()
	a, err := NewRegistry().Configure("", options)
	require.NoError(t, err)
	return a.Evaluate(d)
}

func TestComparator_Comparison(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		options map[string]any
		failure string
	}{
		{
			name:    "default comparator passes",
			samples: []float64{10, 10},
			options: map[string]any{OptionStat: "mean", OptionValue: 15},
		},
		{
			name:    "default comparator fails",
			samples: []float64{10, 10},
			options: map[string]any{OptionStat: "mean", OptionValue: 5},
			failure: "mean is not less than 5, it was 10",
		},
		{
			name:    "greater than fails",
			samples: []float64{2, 2},
			options: map[string]any{OptionComparator: ">", OptionStat: "mean", OptionValue: 5},
			failure: "mean is not greater than 5, it was 2",
		},
		{
			name:    "less than or equal at boundary",
			samples: []float64{5, 5},
			options: map[string]any{OptionComparator: "<=", OptionStat: "mean", OptionValue: 5},
		},
		{
			name:    "greater than or equal fails",
			samples: []float64{1, 3},
			options: map[string]any{OptionComparator: ">=", OptionStat: "max", OptionValue: 3.5},
			failure: "max is not greater than or equal to 3.5, it was 3",
		},
		{
			name:    "equal fails without tolerance",
			samples: []float64{10, 12},
			options: map[string]any{OptionComparator: "=", OptionStat: "mean", OptionValue: 10},
			failure: "mean is not equal to 10, it was 11",
		},
		{
			name:    "equal passes within tolerance",
			samples: []float64{10, 12},
			options: map[string]any{OptionComparator: "=", OptionStat: "mean", OptionValue: 10, OptionTolerance: 1},
		},
		{
			name:    "tolerance relaxes less than",
			samples: []float64{10, 10},
			options: map[string]any{OptionStat: "mean", OptionValue: 9, OptionTolerance: 2},
		},
		{
			name:    "string values are decoded",
			samples: []float64{10, 10},
			options: map[string]any{OptionStat: "min", OptionValue: "5"},
			failure: "min is not less than 5, it was 10",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertWith(t, distribution(t, tt.samples...), tt.options)
			if tt.failure == "" {
				assert.NoError(t, err)
				return
			}
			var f *Failure
			require.True(t, errors.As(err, &f), "expected failure, got %v", err)
			assert.Equal(t, tt.failure, f.Message)
		})
	}
}

func TestComparator_ConfigureRejectsBadOptions(t *testing.T) {
	for name, options := range map[string]map[string]any{
		"missing stat":       {OptionValue: 1},
		"missing value":      {OptionStat: "mean"},
		"unknown stat":       {OptionStat: "mode", OptionValue: 1},
		"unknown comparator": {OptionStat: "mean", OptionValue: 1, OptionComparator: "!="},
		"negative tolerance": {OptionStat: "mean", OptionValue: 1, OptionTolerance: -1},
		"unknown option":     {OptionStat: "mean", OptionValue: 1, "epsilon": 1},
		"non numeric value":  {OptionStat: "mean", OptionValue: "fast"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewComparatorAsserter().Configure(options)
			assert.Error(t, err)
		})
	}
}

func TestComparator_DefaultsApplied(t *testing.T) {
	a, err := NewComparatorAsserter().Configure(map[string]any{OptionStat: "mean", OptionValue: 0})
	require.NoError(t, err)
	cfg := a.(*comparatorAssertion).Config()
	assert.Equal(t, DefaultComparator, cfg.Comparator)
	assert.Nil(t, cfg.Tolerance)
	require.NotNil(t, cfg.Value)
	assert.Equal(t, 0.0, *cfg.Value)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"comparator"}, r.Kinds())

	_, err := r.Get("regression")
	require.ErrorIs(t, err, ErrUnknownAsserter)

	a, err := r.Get("")
	require.NoError(t, err)
	assert.IsType(t, &ComparatorAsserter{}, a)
}

type brokenAssertion struct{}

func (brokenAssertion) Evaluate(*stats.Distribution) error { return errors.New("cannot evaluate") }

func TestEvaluateAll_CollectsEveryFailure(t *testing.T) {
	r := NewRegistry()
	var assertions []Assertion
	for _, opts := range []map[string]any{
		{OptionStat: "mean", OptionValue: 5},
		{OptionStat: "mean", OptionValue: 100},
		{OptionStat: "max", OptionComparator: ">", OptionValue: 50},
	} {
		a, err := r.Configure("comparator", opts)
		require.NoError(t, err)
		assertions = append(assertions, a)
	}

	failures, err := EvaluateAll(distribution(t, 10, 10), assertions)
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, "mean is not less than 5, it was 10", failures[0].Message)
	assert.Equal(t, "max is not greater than 50, it was 10", failures[1].Message)

	failures, err = EvaluateAll(distribution(t, 10), append(assertions, brokenAssertion{}))
	assert.Len(t, failures, 2)
	assert.EqualError(t, err, "cannot evaluate")
}
