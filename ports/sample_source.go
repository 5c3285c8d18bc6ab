package ports

import (
	"context"

	"gopetro/domain/sample"
)

// SampleSource supplies the raw sample collection a dataset is built from.
// Implementations return rows in a stable order; extra columns are ignored.
type SampleSource interface {
	LoadSamples(ctx context.Context) ([]sample.Sample, error)
	// Describe names the source for logs and the dataset summary
	Describe() string
}

// SampleRepository is a SampleSource backed by a writable store
type SampleRepository interface {
	SampleSource
	Insert(ctx context.Context, samples []sample.Sample) error
	Count(ctx context.Context) (int, error)
}
