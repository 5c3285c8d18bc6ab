package postgres

import (
	"math"
	"testing"

	"gopetro/domain/core"
	"gopetro/domain/sample"
	"gopetro/internal/dataset"
	"gopetro/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func migratedDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Connect(t.Context(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.NewRunner("core_samples").Run(t.Context(), db))
	return db
}

func TestInsertAndLoadSamples(t *testing.T) {
	repo := NewSampleRepository(migratedDB(t), "core_samples")

	require.NoError(t, repo.Insert(t.Context(), []sample.Sample{
		{ID: "2", Measurements: sample.Measurements{CV: 0.5, HI: 0.7, RQI: 12, FZI: 2.5}},
		{ID: "1", Measurements: sample.Measurements{CV: 0.1, HI: 0.3, RQI: 15, FZI: 3.5}},
		{ID: "3", Measurements: sample.Measurements{CV: math.NaN(), HI: 1.5, RQI: 8, FZI: 1.0}},
	}))

	n, err := repo.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := repo.LoadSamples(t.Context())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, core.SampleID("1"), got[0].ID, "ordered by id")
	assert.Equal(t, sample.Measurements{CV: 0.5, HI: 0.7, RQI: 12, FZI: 2.5}, got[1].Measurements)
	assert.True(t, math.IsNaN(got[2].CV), "NULL reads back as NaN")
	assert.Equal(t, "sqlite:core_samples", repo.Describe())
}

func TestInsertUpserts(t *testing.T) {
	repo := NewSampleRepository(migratedDB(t), "core_samples")

	first := sample.Sample{ID: "1", Measurements: sample.Measurements{CV: 0.1, HI: 0.3, RQI: 15, FZI: 3.5}}
	require.NoError(t, repo.Insert(t.Context(), []sample.Sample{first}))

	first.CV = 0.9
	require.NoError(t, repo.Insert(t.Context(), []sample.Sample{first}))

	got, err := repo.LoadSamples(t.Context())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0.9, got[0].CV)
}

func TestInsertRejectsMissingID(t *testing.T) {
	repo := NewSampleRepository(migratedDB(t), "core_samples")

	err := repo.Insert(t.Context(), []sample.Sample{
		{ID: "1", Measurements: sample.Measurements{CV: 0.1, HI: 0.3, RQI: 15, FZI: 3.5}},
		{Measurements: sample.Measurements{CV: 0.1, HI: 0.3, RQI: 15, FZI: 3.5}},
	})
	assert.ErrorIs(t, err, core.ErrMissingSampleID)

	n, err := repo.Count(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n, "transaction rolled back")
}

func TestLoadSamplesMissingTable(t *testing.T) {
	db, err := Connect(t.Context(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSampleRepository(db, "core_samples").LoadSamples(t.Context())
	assert.True(t, core.IsUnavailableError(err))
}

func TestRepositoryFeedsDatasetStore(t *testing.T) {
	repo := NewSampleRepository(migratedDB(t), "core_samples")
	require.NoError(t, repo.Insert(t.Context(), []sample.Sample{
		{ID: "1", Measurements: sample.Measurements{CV: 0.1, HI: 0.3, RQI: 15, FZI: 3.5}},
		{ID: "3", Measurements: sample.Measurements{CV: 1.2, HI: 1.5, RQI: 8, FZI: 1.0}},
	}))

	store := dataset.NewStore(repo, nil)
	ds, err := store.Refresh(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, map[sample.Category]int{
		sample.CategorySuitable:          1,
		sample.CategoryMostlyHomogeneous: 0,
		sample.CategoryHeterogeneous:     1,
	}, ds.CategoryCounts())
}
