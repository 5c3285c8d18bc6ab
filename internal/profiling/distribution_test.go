package profiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{4, 1, 3, 2, 5})
	require.NoError(t, err)
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 3.0, s.Mean, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.Equal(t, 3.0, s.Median)
	assert.InDelta(t, 1.41421356, s.StdDev, 1e-6)
	assert.LessOrEqual(t, s.Q25, s.Median)
	assert.GreaterOrEqual(t, s.Q75, s.Median)
}

func TestSummarizeSingleValue(t *testing.T) {
	s, err := Summarize([]float64{2.5})
	require.NoError(t, err)
	assert.Equal(t, 2.5, s.Q25)
	assert.Equal(t, 2.5, s.Q75)
	assert.Equal(t, 0.0, s.StdDev)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(nil)
	assert.Error(t, err)
}

func TestRelatePerfectLine(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ys := []float64{3, 5, 7, 9}

	rel, ok := Relate(xs, ys)
	require.True(t, ok)
	assert.Equal(t, 4, rel.N)
	assert.InDelta(t, 1.0, rel.Pearson, 1e-12)
	assert.InDelta(t, 2.0, rel.Slope, 1e-12)
	assert.InDelta(t, 1.0, rel.Intercept, 1e-12)
	assert.InDelta(t, 1.0, rel.RSquared, 1e-12)
}

func TestRelateUndefined(t *testing.T) {
	_, ok := Relate([]float64{1}, []float64{2})
	assert.False(t, ok, "single point")

	_, ok = Relate([]float64{1, 1, 1}, []float64{1, 2, 3})
	assert.False(t, ok, "constant x")

	_, ok = Relate([]float64{1, 2}, []float64{1, 2, 3})
	assert.False(t, ok, "length mismatch")
}
