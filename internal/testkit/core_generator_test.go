package testkit

import (
	"math"
	"path/filepath"
	"testing"

	"gopetro/adapters/excel"
	"gopetro/domain/categorizer"
	"gopetro/domain/sample"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreDataGenerator_Deterministic(t *testing.T) {
	config := DefaultCoreConfig()
	config.Count = 50

	first := NewCoreDataGenerator(config).Generate()
	second := NewCoreDataGenerator(config).Generate()
	assert.Equal(t, first, second)

	config.Seed = 7
	assert.NotEqual(t, first, NewCoreDataGenerator(config).Generate())
}

func TestCoreDataGenerator_RegimesCategorizeAsDrawn(t *testing.T) {
	config := DefaultCoreConfig()
	config.Count = 1000

	seen := map[sample.Category]int{}
	for _, s := range NewCoreDataGenerator(config).GenerateLabeled() {
		require.True(t, s.Valid)
		got, err := categorizer.Categorize(s.Measurements)
		require.NoError(t, err)
		assert.Equal(t, s.Regime, got, "sample %s %+v", s.ID, s.Measurements)
		seen[got]++
	}
	for _, c := range sample.Categories() {
		assert.Positive(t, seen[c], "no %s samples drawn", c)
	}
}

func TestCoreDataGenerator_InvalidRate(t *testing.T) {
	config := DefaultCoreConfig()
	config.Count = 400
	config.InvalidRate = 0.25

	invalid := 0
	for _, s := range NewCoreDataGenerator(config).GenerateLabeled() {
		if !s.Valid {
			invalid++
			assert.Len(t, s.NonFinite(), 1)
		}
	}
	assert.InDelta(t, 100, invalid, 40)
}

func TestTestKitDatasetExcludesInvalid(t *testing.T) {
	config := DefaultCoreConfig()
	config.Count = 100
	config.InvalidRate = 0.1
	kit := NewTestKitWithConfig(config)

	ds, err := kit.Dataset()
	require.NoError(t, err)
	assert.Equal(t, 100, ds.Len()+len(ds.Excluded()))
	assert.NotEmpty(t, ds.Excluded())
}

func TestTestKitStore(t *testing.T) {
	store, err := NewTestKit().Store(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 200, store.Current().Len())
	assert.Equal(t, "synthetic:n=200,seed=42", store.Current().Source())
}

func TestWriteFiles(t *testing.T) {
	config := DefaultCoreConfig()
	config.Count = 10
	config.InvalidRate = 0.5
	kit := NewTestKitWithConfig(config)
	dir := t.TempDir()

	for _, name := range []string{"samples.csv", "samples.xlsx"} {
		path := filepath.Join(dir, name)
		if filepath.Ext(name) == ".csv" {
			require.NoError(t, kit.WriteCSV(path))
		} else {
			require.NoError(t, kit.WriteWorkbook(path))
		}

		back, err := excel.NewSampleSource(excel.DefaultExcelConfig(path), nil).LoadSamples(t.Context())
		require.NoError(t, err, name)
		want := kit.Samples()
		require.Len(t, back, len(want), name)
		for i := range want {
			assert.Equal(t, want[i].ID, back[i].ID, name)
			assert.Equal(t, want[i].NonFinite(), back[i].NonFinite(), name)
		}
	}
	assert.Equal(t, "", formatValue(math.NaN()))
	assert.Equal(t, "0.25", formatValue(0.25))
}
