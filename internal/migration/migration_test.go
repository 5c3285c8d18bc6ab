package migration

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func memoryDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunIsIdempotent(t *testing.T) {
	db := memoryDB(t)
	runner := NewRunner("core_samples")

	applied, err := runner.Applied(t.Context(), db)
	assert.Error(t, err, "schema_migrations does not exist yet")
	assert.False(t, applied)

	require.NoError(t, runner.Run(t.Context(), db))
	require.NoError(t, runner.Run(t.Context(), db))

	applied, err = runner.Applied(t.Context(), db)
	require.NoError(t, err)
	assert.True(t, applied)

	_, err = db.ExecContext(t.Context(), `INSERT INTO core_samples (id, cv, hi, rqi, fzi) VALUES ('1', 0.1, 0.3, 15, 3.5)`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.GetContext(t.Context(), &n, `SELECT COUNT(*) FROM core_samples`))
	assert.Equal(t, 1, n)
	assert.Equal(t, "1.0.0", runner.Version())
}
