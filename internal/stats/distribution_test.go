package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDistribution_Empty(t *testing.T) {
	d, err := NewDistribution(nil)
	assert.Nil(t, d)
	require.ErrorIs(t, err, ErrEmptyDistribution)

	_, err = NewDistribution([]float64{})
	require.ErrorIs(t, err, ErrEmptyDistribution)
}

func TestDistribution_Aggregates(t *testing.T) {
	d, err := NewDistribution([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)

	assert.Equal(t, 8, d.Count())
	assert.Equal(t, 40.0, d.Sum())
	assert.Equal(t, 5.0, d.Mean())
	assert.Equal(t, 4.0, d.Variance())
	assert.Equal(t, 2.0, d.Stdev())
	assert.Equal(t, 40.0, d.Rstdev())
	assert.Equal(t, 2.0, d.Min())
	assert.Equal(t, 9.0, d.Max())
}

func TestDistribution_Properties(t *testing.T) {
	sets := [][]float64{
		{1},
		{10, 10},
		{3, 1, 2},
		{-5, 0, 5, 12.5},
		{0.001, 1000, 42, 42, 7},
	}
	for _, samples := range sets {
		d, err := NewDistribution(samples)
		require.NoError(t, err)

		var sum float64
		for _, v := range samples {
			sum += v
		}
		assert.InDelta(t, sum/float64(len(samples)), d.Mean(), 1e-9, "mean of %v", samples)
		assert.GreaterOrEqual(t, d.Stdev(), 0.0, "stdev of %v", samples)
		assert.Equal(t, d.Min(), d.Percentile(0), "p0 of %v", samples)
		assert.Equal(t, d.Max(), d.Percentile(100), "p100 of %v", samples)
	}
}

func TestDistribution_Percentile(t *testing.T) {
	d, err := NewDistribution([]float64{40, 10, 30, 20})
	require.NoError(t, err)

	assert.Equal(t, 10.0, d.Percentile(0))
	assert.InDelta(t, 25.0, d.Percentile(50), 1e-9)
	assert.InDelta(t, 38.5, d.Percentile(95), 1e-9)
	assert.Equal(t, 40.0, d.Percentile(100))
	// Out of range percentiles clamp to the extremes.
	assert.Equal(t, 10.0, d.Percentile(-3))
	assert.Equal(t, 40.0, d.Percentile(150))
}

func TestDistribution_RstdevZeroMean(t *testing.T) {
	d, err := NewDistribution([]float64{-1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, d.Rstdev())
	assert.False(t, math.IsNaN(d.Rstdev()))
}

func TestDistribution_SamplesAreCopied(t *testing.T) {
	in := []float64{3, 1, 2}
	d, err := NewDistribution(in)
	require.NoError(t, err)

	in[0] = 100
	assert.Equal(t, []float64{3, 1, 2}, d.Samples())
	assert.Equal(t, 3.0, d.Max())
}

func TestDistribution_Stat(t *testing.T) {
	d, err := NewDistribution([]float64{10, 10})
	require.NoError(t, err)

	mean, err := d.Stat("mean")
	require.NoError(t, err)
	assert.Equal(t, 10.0, mean)

	_, err = d.Stat("mode")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownStat))

	stats := d.Stats()
	assert.Len(t, stats, len(StatNames()))
	for _, name := range StatNames() {
		assert.Contains(t, stats, name)
		assert.True(t, IsStat(name))
	}
	assert.False(t, IsStat("mode"))
}
