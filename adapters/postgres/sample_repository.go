package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"gopetro/domain/core"
	"gopetro/domain/sample"
	"gopetro/internal/errors"
	"gopetro/ports"

	"github.com/jmoiron/sqlx"
)

// sampleRow mirrors one row of the samples table; NULL measurements are NaN
type sampleRow struct {
	ID  string          `db:"id"`
	CV  sql.NullFloat64 `db:"cv"`
	HI  sql.NullFloat64 `db:"hi"`
	RQI sql.NullFloat64 `db:"rqi"`
	FZI sql.NullFloat64 `db:"fzi"`
}

func (r sampleRow) toSample() sample.Sample {
	return sample.Sample{
		ID: core.SampleID(r.ID),
		Measurements: sample.Measurements{
			CV:  nullToNaN(r.CV),
			HI:  nullToNaN(r.HI),
			RQI: nullToNaN(r.RQI),
			FZI: nullToNaN(r.FZI),
		},
	}
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func nanToNull(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// sampleRepository implements ports.SampleRepository over postgres or sqlite
type sampleRepository struct {
	db    *sqlx.DB
	table string
}

// NewSampleRepository creates a repository reading table. The table name
// must already be validated as a plain identifier.
func NewSampleRepository(db *sqlx.DB, table string) ports.SampleRepository {
	return &sampleRepository{db: db, table: table}
}

// Describe names the backing table
func (r *sampleRepository) Describe() string {
	return fmt.Sprintf("%s:%s", r.db.DriverName(), r.table)
}

// LoadSamples reads every row ordered by id
func (r *sampleRepository) LoadSamples(ctx context.Context) ([]sample.Sample, error) {
	query := fmt.Sprintf(`SELECT id, cv, hi, rqi, fzi FROM %s ORDER BY id`, r.table)

	var rows []sampleRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.DatasetUnavailable("failed to query "+r.table, err)
	}

	out := make([]sample.Sample, len(rows))
	for i, row := range rows {
		out[i] = row.toSample()
	}
	return out, nil
}

// Insert upserts samples in one transaction. Non-finite measurements are
// stored as NULL.
func (r *sampleRepository) Insert(ctx context.Context, samples []sample.Sample) error {
	query := r.db.Rebind(fmt.Sprintf(`INSERT INTO %s (id, cv, hi, rqi, fzi) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET cv = excluded.cv, hi = excluded.hi, rqi = excluded.rqi, fzi = excluded.fzi`, r.table))

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return errors.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	for _, s := range samples {
		if s.ID == "" {
			return errors.WithCode(errors.CodeValidationError, core.ErrMissingSampleID)
		}
		if _, err := stmt.ExecContext(ctx, s.ID.String(),
			nanToNull(s.CV), nanToNull(s.HI), nanToNull(s.RQI), nanToNull(s.FZI)); err != nil {
			return errors.Wrapf(err, "failed to insert sample %s", s.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit samples")
	}
	return nil
}

// Count returns the number of stored rows
func (r *sampleRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)); err != nil {
		return 0, errors.Wrap(err, "failed to count samples")
	}
	return n, nil
}
