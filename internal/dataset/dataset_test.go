package dataset

import (
	stderrors "errors"
	"math"
	"testing"

	"gopetro/domain/core"
	"gopetro/domain/sample"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smp(id string, cv, hi, rqi, fzi float64) sample.Sample {
	return sample.Sample{ID: core.SampleID(id), Measurements: sample.Measurements{CV: cv, HI: hi, RQI: rqi, FZI: fzi}}
}

func scenarioSamples() []sample.Sample {
	return []sample.Sample{
		smp("1", 0.1, 0.3, 15, 3.5),
		smp("2", 0.5, 0.7, 12, 2.5),
		smp("3", 1.2, 1.5, 8, 1.0),
		smp("4", 0.9, 0.8, 10, 1.8),
	}
}

func TestBuildCategorizesInOrder(t *testing.T) {
	ds, err := Build("test", scenarioSamples())
	require.NoError(t, err)

	require.Equal(t, 4, ds.Len())
	expected := []sample.Category{
		sample.CategorySuitable,
		sample.CategoryMostlyHomogeneous,
		sample.CategoryHeterogeneous,
		sample.CategoryMostlyHomogeneous,
	}
	for i, c := range expected {
		assert.Equal(t, c, ds.At(i).Category, "sample %d", i+1)
	}

	got, err := ds.Get("3")
	require.NoError(t, err)
	assert.Equal(t, sample.CategoryHeterogeneous, got.Category)

	_, err = ds.Get("99")
	assert.True(t, core.IsNotFoundError(err))

	assert.Equal(t, map[sample.Category]int{
		sample.CategorySuitable:          1,
		sample.CategoryMostlyHomogeneous: 2,
		sample.CategoryHeterogeneous:     1,
	}, ds.CategoryCounts())
	assert.Equal(t, []float64{15, 12, 8, 10}, ds.Column(sample.VariableRQI))
	assert.Equal(t, "test", ds.Source())
	assert.False(t, ds.BuiltAt().Time().IsZero())
}

func TestBuildExcludesInvalidSamples(t *testing.T) {
	raw := append(scenarioSamples(),
		smp("5", math.NaN(), 0.3, 15, 3.5),
		smp("1", 0.2, 0.2, 20, 3),
		smp("", 0.2, 0.2, 20, 3),
		smp("6", 0.2, math.Inf(1), 20, 3),
	)

	ds, err := Build("test", raw)
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, []string{"5", "1", "#7", "6"}, ds.ExcludedIDs())

	excluded := ds.Excluded()
	assert.True(t, stderrors.Is(excluded[0].Err, core.ErrInvalidMeasurement))
	assert.True(t, stderrors.Is(excluded[1].Err, core.ErrDuplicateSample))
	assert.True(t, stderrors.Is(excluded[2].Err, core.ErrMissingSampleID))
	assert.True(t, stderrors.Is(excluded[3].Err, core.ErrInvalidMeasurement))

	first, err := ds.Get("1")
	require.NoError(t, err)
	assert.Equal(t, 0.1, first.CV, "first occurrence of a duplicate id wins")
}

func TestBuildUnavailable(t *testing.T) {
	_, err := Build("empty", nil)
	assert.True(t, core.IsUnavailableError(err))

	_, err = Build("broken", []sample.Sample{smp("1", math.NaN(), 0, 0, 0)})
	assert.True(t, core.IsUnavailableError(err))
	assert.Contains(t, err.Error(), "all 1 samples from broken were excluded")
}

func TestVersionIsContentAddressed(t *testing.T) {
	a, err := Build("a", scenarioSamples())
	require.NoError(t, err)
	b, err := Build("b", scenarioSamples())
	require.NoError(t, err)
	assert.Equal(t, a.Version(), b.Version(), "source name and build time do not affect the version")

	changed := scenarioSamples()
	changed[3].FZI = 1.2
	c, err := Build("a", changed)
	require.NoError(t, err)
	assert.NotEqual(t, a.Version(), c.Version())

	reordered := scenarioSamples()
	reordered[0], reordered[1] = reordered[1], reordered[0]
	d, err := Build("a", reordered)
	require.NoError(t, err)
	assert.NotEqual(t, a.Version(), d.Version(), "order is part of the dataset")
}

func TestVersionCoversExclusions(t *testing.T) {
	bad := append(scenarioSamples(), smp("5", math.NaN(), 0.2, 12, 2.5))
	a, err := Build("a", bad)
	require.NoError(t, err)

	dup := append(scenarioSamples(), smp("1", 0.2, 0.2, 12, 2.5))
	b, err := Build("a", dup)
	require.NoError(t, err)

	assert.Equal(t, a.Len(), b.Len())
	assert.NotEqual(t, a.Version(), b.Version(), "only the excluded rows differ")
}

func TestSamplesReturnsCopy(t *testing.T) {
	ds, err := Build("test", scenarioSamples())
	require.NoError(t, err)

	copied := ds.Samples()
	copied[0].Category = sample.CategoryHeterogeneous
	assert.Equal(t, sample.CategorySuitable, ds.At(0).Category)
}
